package travelapi

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbook/internal/domain"
)

func (c *Client) GetFlight(ctx context.Context, flightID int64) (*domain.Flight, error) {
	var flight domain.Flight
	if err := c.get(ctx, fmt.Sprintf("/flights/%d", flightID), &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

func (c *Client) GetFlightSeat(ctx context.Context, flightSeatID int64) (*domain.FlightSeat, error) {
	var seat domain.FlightSeat
	if err := c.get(ctx, fmt.Sprintf("/flight-seats/%d", flightSeatID), &seat); err != nil {
		return nil, err
	}
	return &seat, nil
}

func (c *Client) GetAirport(ctx context.Context, airportID int64) (*domain.Airport, error) {
	var airport domain.Airport
	if err := c.get(ctx, fmt.Sprintf("/airports/%d", airportID), &airport); err != nil {
		return nil, err
	}
	return &airport, nil
}
