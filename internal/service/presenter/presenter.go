// Package presenter derives display state for a booking and its joined
// records. Nothing here performs I/O.
package presenter

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/format"
)

const (
	LabelCancelled = "Cancelled"
	LabelConfirmed = "Confirmed & Paid"
	LabelPending   = "Payment Pending"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterConfirmed Filter = "confirmed"
	FilterPending   Filter = "pending"
)

// ParseFilter maps a query value to a Filter. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterConfirmed, FilterPending:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

type AirportView struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type FlightView struct {
	FlightID      int64       `json:"flight_id"`
	FlightNumber  string      `json:"flight_number"`
	Origin        AirportView `json:"origin"`
	Destination   AirportView `json:"destination"`
	DepartureDate string      `json:"departure_date"`
	DepartureTime string      `json:"departure_time"`
	ArrivalDate   string      `json:"arrival_date"`
	ArrivalTime   string      `json:"arrival_time"`
	Duration      string      `json:"duration"`
}

type PassengerView struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	FlightSeatID *int64 `json:"flight_seat_id,omitempty"`
}

type Actions struct {
	CompletePayment string `json:"complete_payment,omitempty"`
	ETicket         string `json:"e_ticket,omitempty"`
	Cancel          bool   `json:"cancel"`
	Details         string `json:"details"`
}

type BookingView struct {
	BookingID     int64           `json:"booking_id"`
	Reference     string          `json:"booking_reference"`
	Status        string          `json:"status"`
	StatusLabel   string          `json:"status_label"`
	IsConfirmed   bool            `json:"is_confirmed"`
	IsPending     bool            `json:"is_pending"`
	IsCancelled   bool            `json:"is_cancelled"`
	TotalAmount   string          `json:"total_amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Flight        FlightView      `json:"flight"`
	Passengers    []PassengerView `json:"passengers"`
	Actions       Actions         `json:"actions"`
}

// IsConfirmed reports a confirmed booking with a successful payment.
func IsConfirmed(d domain.BookingDetails) bool {
	return d.Booking.Status == domain.BookingStatusConfirmed && d.Payment.Succeeded()
}

// Matches reports whether d belongs in the list selected by f.
func (f Filter) Matches(d domain.BookingDetails) bool {
	switch f {
	case FilterConfirmed:
		return IsConfirmed(d)
	case FilterPending:
		return !IsConfirmed(d)
	}
	return true
}

// TotalAmount prefers the payment amount, then the booking total, and
// formats the result with two decimals.
func TotalAmount(d domain.BookingDetails) string {
	if d.Payment != nil && d.Payment.Amount != nil && *d.Payment.Amount != 0 {
		return format.Fixed2(d.Payment.Amount.Float64())
	}
	if d.Booking.TotalAmount != nil && *d.Booking.TotalAmount != 0 {
		return format.Fixed2(d.Booking.TotalAmount.Float64())
	}
	return "0.00"
}

func Present(d domain.BookingDetails) BookingView {
	confirmed := IsConfirmed(d)
	cancelled := d.Booking.Status == domain.BookingStatusCancelled

	view := BookingView{
		BookingID:   d.Booking.ID,
		Reference:   d.Booking.Reference,
		Status:      string(d.Booking.Status),
		IsConfirmed: confirmed,
		IsPending:   !confirmed,
		IsCancelled: cancelled,
		TotalAmount: TotalAmount(d),
		Notes:       d.Booking.Notes,
		Flight:      presentFlight(d),
		Passengers:  make([]PassengerView, 0, len(d.Passengers)),
		Actions:     actions(d, confirmed, cancelled),
	}

	switch {
	case cancelled:
		view.StatusLabel = LabelCancelled
	case confirmed:
		view.StatusLabel = LabelConfirmed
	default:
		view.StatusLabel = LabelPending
	}

	if d.Payment != nil {
		view.PaymentMethod = paymentMethod(d.Payment.Method)
	}

	for i, p := range d.Passengers {
		view.Passengers = append(view.Passengers, PassengerView{
			Number:       i + 1,
			Name:         p.FirstName + " " + p.LastName,
			Type:         string(p.Type),
			FlightSeatID: p.FlightSeatID,
		})
	}

	return view
}

// PresentAll presents the bookings selected by f, keeping their order.
func PresentAll(details []domain.BookingDetails, f Filter) []BookingView {
	views := make([]BookingView, 0, len(details))
	for _, d := range details {
		if f.Matches(d) {
			views = append(views, Present(d))
		}
	}
	return views
}

func presentFlight(d domain.BookingDetails) FlightView {
	dep := d.Flight.DepartureTime.Time
	arr := d.Flight.ArrivalTime.Time

	return FlightView{
		FlightID:      d.Flight.ID,
		FlightNumber:  d.Flight.FlightNumber,
		Origin:        presentAirport(d.OriginAirport),
		Destination:   presentAirport(d.DestinationAirport),
		DepartureDate: format.Date(dep),
		DepartureTime: format.Clock(dep),
		ArrivalDate:   format.Date(arr),
		ArrivalTime:   format.Clock(arr),
		Duration:      format.FlightDuration(dep, arr),
	}
}

func presentAirport(a domain.Airport) AirportView {
	return AirportView{Code: a.Code, Name: a.Name, City: a.City, Country: a.Country}
}

func actions(d domain.BookingDetails, confirmed, cancelled bool) Actions {
	id := strconv.FormatInt(d.Booking.ID, 10)
	out := Actions{
		Cancel:  !cancelled,
		Details: "/my-bookings/" + id,
	}
	if !confirmed && !cancelled {
		out.CompletePayment = PaymentURL(d.Booking.ID, d.Flight.ID)
	}
	if confirmed {
		out.ETicket = "/e-ticket/" + id
	}
	return out
}

// PaymentURL is the payment screen for a booking. flightID is left out when
// zero, which is the case for service-only bookings.
func PaymentURL(bookingID, flightID int64) string {
	q := url.Values{}
	q.Set("bookingId", strconv.FormatInt(bookingID, 10))
	if flightID != 0 {
		q.Set("flightId", strconv.FormatInt(flightID, 10))
	}
	return "/payment?" + q.Encode()
}

func paymentMethod(method string) string {
	if method == "credit_card" {
		return "Credit Card"
	}
	return method
}
