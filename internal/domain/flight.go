package domain

type Flight struct {
	ID                   int64     `json:"flight_id"`
	FlightNumber         string    `json:"flight_number"`
	OriginAirportID      int64     `json:"origin_airport_id"`
	DestinationAirportID int64     `json:"destination_airport_id"`
	DepartureTime        Timestamp `json:"departure_time"`
	ArrivalTime          Timestamp `json:"arrival_time"`
	Status               string    `json:"status"`
	BasePrice            Amount    `json:"base_price"`
	TaxRate              Amount    `json:"tax_rate"`
	AirplaneID           *int64    `json:"airplane_id,omitempty"`
}

type FlightSeat struct {
	ID         int64  `json:"flight_seat_id"`
	FlightID   int64  `json:"flight_id"`
	SeatID     int64  `json:"seat_id"`
	Status     string `json:"status"`
	SeatNumber string `json:"seat_number,omitempty"`
	SeatClass  string `json:"seat_class,omitempty"`
}

type Airport struct {
	ID      int64  `json:"airport_id"`
	Code    string `json:"airport_code"`
	Name    string `json:"airport_name"`
	City    string `json:"city"`
	Country string `json:"country"`
}
