package travelapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Domenick1991/travelbook/internal/domain"
)

func (c *Client) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	var booking domain.Booking
	if err := c.get(ctx, fmt.Sprintf("/bookings/%d", bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.get(ctx, "/bookings/user/"+url.PathEscape(userID), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, input domain.BookingCreate) (*domain.Booking, error) {
	var booking domain.Booking
	if err := c.post(ctx, "/bookings/", input, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetPassengersByBooking(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	var passengers []domain.Passenger
	if err := c.get(ctx, fmt.Sprintf("/passengers/booking/%d", bookingID), &passengers); err != nil {
		return nil, err
	}
	return passengers, nil
}

func (c *Client) GetPaymentByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var payment domain.Payment
	if err := c.get(ctx, fmt.Sprintf("/payments/booking/%d", bookingID), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) GetBookingServices(ctx context.Context, bookingID int64) ([]domain.BookingService, error) {
	var services []domain.BookingService
	if err := c.get(ctx, fmt.Sprintf("/booking-services/booking/%d", bookingID), &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) AddServiceToBooking(ctx context.Context, input domain.BookingServiceCreate) (*domain.BookingService, error) {
	var attached domain.BookingService
	if err := c.post(ctx, "/booking-services/", input, &attached); err != nil {
		return nil, err
	}
	return &attached, nil
}

func (c *Client) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	var service domain.Service
	if err := c.get(ctx, fmt.Sprintf("/services/%d", serviceID), &service); err != nil {
		return nil, err
	}
	return &service, nil
}
