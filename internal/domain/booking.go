package domain

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

const PaymentStatusSuccess = "success"

type Booking struct {
	ID          int64         `json:"booking_id"`
	UserID      string        `json:"user_id"`
	Reference   string        `json:"booking_reference"`
	BookingDate Timestamp     `json:"booking_date"`
	Status      BookingStatus `json:"status"`
	TotalAmount *Amount       `json:"total_amount,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

type BookingCreate struct {
	UserID string        `json:"user_id"`
	Status BookingStatus `json:"status,omitempty"`
	Notes  string        `json:"notes,omitempty"`
}

type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

type Passenger struct {
	ID              int64         `json:"passenger_id"`
	BookingID       int64         `json:"booking_id"`
	Type            PassengerType `json:"passenger_type"`
	FirstName       string        `json:"first_name"`
	MiddleName      string        `json:"middle_name,omitempty"`
	LastName        string        `json:"last_name"`
	DateOfBirth     string        `json:"date_of_birth"`
	Email           string        `json:"email,omitempty"`
	PhoneNumber     string        `json:"phone_number,omitempty"`
	FlightSeatID    *int64        `json:"flight_seat_id,omitempty"`
	SpecialRequests string        `json:"special_requests,omitempty"`
}

type Payment struct {
	ID          int64     `json:"payment_id"`
	BookingID   int64     `json:"booking_id"`
	Amount      *Amount   `json:"amount,omitempty"`
	PaymentDate Timestamp `json:"payment_date"`
	Method      string    `json:"method,omitempty"`
	Status      string    `json:"status"`
}

func (p *Payment) Succeeded() bool {
	return p != nil && p.Status == PaymentStatusSuccess
}

type ServiceType string

const (
	ServiceHotel     ServiceType = "hotel"
	ServiceRentalCar ServiceType = "rental_car"
	ServicePackage   ServiceType = "package"
)

type Service struct {
	ID    int64       `json:"service_id"`
	Name  string      `json:"name"`
	Type  ServiceType `json:"type"`
	Price Amount      `json:"price"`
}

// BookingService attaches a non-flight service to a booking.
type BookingService struct {
	ID        int64 `json:"booking_service_id"`
	BookingID int64 `json:"booking_id"`
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

type BookingServiceCreate struct {
	BookingID int64 `json:"booking_id"`
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

// BookingDetails is a booking joined with everything needed to present it.
type BookingDetails struct {
	Booking            Booking
	Flight             Flight
	Passengers         []Passenger
	Payment            *Payment
	OriginAirport      Airport
	DestinationAirport Airport
}
