package travelapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/travelbook/internal/auth"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "service-token", 5*time.Second)
}

func TestClient_CalculateRefund(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/refunds/calculate/42", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"booking_id":42,"original_amount":500,"refund_percentage":80,"cancellation_fee":14.29,
			"refund_amount":385.71,"hours_until_departure":30,"policy_applied":"24-72h","can_cancel":true,"message":""}`)
	})

	ctx := auth.WithToken(context.Background(), "user-token")
	calc, err := client.CalculateRefund(ctx, 42)
	require.NoError(t, err)

	assert.True(t, calc.CanCancel)
	assert.Equal(t, 385.71, calc.RefundAmount)
	assert.Equal(t, 30.0, calc.HoursUntilDeparture)
	assert.Equal(t, "24-72h", calc.PolicyApplied)
}

func TestClient_ServiceTokenOnlyForServiceCalls(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{name: "anonymous user call", ctx: context.Background(), expected: ""},
		{name: "caller token", ctx: auth.WithToken(context.Background(), "user-token"), expected: "Bearer user-token"},
		{name: "background job", ctx: auth.AsService(context.Background()), expected: "Bearer service-token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.expected, r.Header.Get("Authorization"))
				_, _ = io.WriteString(w, `[]`)
			})

			bookings, err := client.GetUserBookings(tc.ctx, "auth0|abc")
			require.NoError(t, err)
			assert.Empty(t, bookings)
		})
	}
}

func TestClient_ResponseSizeCapped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, strings.Repeat("x", maxResponseBytes+1024))
	})

	_, err := client.GetBooking(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"booking_id": 1, "notes": "`+strings.Repeat("x", maxResponseBytes)+`"}`)
	})
	_, err = client.GetBooking(context.Background(), 1)
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_EscapesUserID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refunds/user/auth0%7Cabc", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `[{"refund_id":1,"booking_id":2,"refund_amount":"10.50","status":"pending"}]`)
	})

	refunds, err := client.GetUserRefunds(context.Background(), "auth0|abc")
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, domain.Amount(10.5), refunds[0].RefundAmount)
	assert.Equal(t, domain.RefundStatusPending, refunds[0].Status)
}

func TestClient_CreateRefundRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refunds/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body domain.RefundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.RefundRequest{BookingID: 7, RefundReason: "plans changed", Notes: "Booking reference: BK-2025-001"}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"refund_id":99,"booking_id":7,"status":"pending","refund_amount":385.71}`)
	})

	refund, err := client.CreateRefundRequest(context.Background(), domain.RefundRequest{
		BookingID:    7,
		RefundReason: "plans changed",
		Notes:        "Booking reference: BK-2025-001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), refund.ID)
}

func TestClient_ErrorMessages(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "detail", status: http.StatusBadRequest, body: `{"detail":"Booking already cancelled"}`, expected: "Booking already cancelled"},
		{name: "message", status: http.StatusConflict, body: `{"message":"Refund exists"}`, expected: "Refund exists"},
		{name: "validation detail list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"bad"}]}`, expected: "request failed with status 422: Unprocessable Entity"},
		{name: "plain text", status: http.StatusInternalServerError, body: `boom`, expected: "request failed with status 500: Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.GetBooking(context.Background(), 1)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.expected, apiErr.Error())
		})
	}
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Payment not found"}`)
	})

	_, err := client.GetPaymentByBooking(context.Background(), 3)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestClient_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.CalculateRefund(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_FlightLookups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flight-seats/5":
			_, _ = io.WriteString(w, `{"flight_seat_id":5,"flight_id":11,"seat_id":3,"status":"booked"}`)
		case "/flights/11":
			_, _ = io.WriteString(w, `{"flight_id":11,"flight_number":"VN123","origin_airport_id":1,"destination_airport_id":2,
				"departure_time":"2025-03-01T08:00:00","arrival_time":"2025-03-01T10:15:00","status":"scheduled","base_price":"120.00","tax_rate":"0.10"}`)
		case "/airports/1":
			_, _ = io.WriteString(w, `{"airport_id":1,"airport_code":"SGN","airport_name":"Tan Son Nhat","city":"Ho Chi Minh City","country":"Vietnam"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	seat, err := client.GetFlightSeat(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(11), seat.FlightID)

	flight, err := client.GetFlight(ctx, seat.FlightID)
	require.NoError(t, err)
	assert.Equal(t, "VN123", flight.FlightNumber)
	assert.Equal(t, 135*time.Minute, flight.ArrivalTime.Sub(flight.DepartureTime.Time))

	airport, err := client.GetAirport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "SGN", airport.Code)

	_, err = client.GetAirport(ctx, 2)
	assert.True(t, IsNotFound(err))
}

func TestClient_GetService(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/8", r.URL.Path)
		_, _ = io.WriteString(w, `{"service_id":8,"name":"Grand Plaza","type":"hotel","price":"199.00"}`)
	})

	service, err := client.GetService(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza", service.Name)
	assert.Equal(t, domain.ServiceHotel, service.Type)
	assert.Equal(t, domain.Amount(199), service.Price)
}
