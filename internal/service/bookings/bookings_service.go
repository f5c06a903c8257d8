package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbook/internal/auth"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/service/presenter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrIncompleteBooking = errors.New("booking has no complete flight data")

type BookingsUseCase interface {
	ListUserBookings(ctx context.Context, userID string, filter presenter.Filter) ([]presenter.BookingView, error)
	GetBooking(ctx context.Context, bookingID int64) (*presenter.BookingView, error)
}

// TravelAPI is the read side of the travel API needed to assemble a booking.
type TravelAPI interface {
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	GetPassengersByBooking(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
	GetPaymentByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetFlightSeat(ctx context.Context, flightSeatID int64) (*domain.FlightSeat, error)
	GetFlight(ctx context.Context, flightID int64) (*domain.Flight, error)
	GetAirport(ctx context.Context, airportID int64) (*domain.Airport, error)
}

// Cache stores loaded lists per user and caller token.
type Cache interface {
	GetUserBookings(userID, token string) ([]domain.BookingDetails, bool)
	SetUserBookings(userID, token string, details []domain.BookingDetails)
	InvalidateUser(userID string)
}

type BookingsService struct {
	api         TravelAPI
	cache       Cache
	logger      *zap.Logger
	concurrency int
}

func NewBookingsService(api TravelAPI, cache Cache, concurrency int, logger *zap.Logger) *BookingsService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BookingsService{
		api:         api,
		cache:       cache,
		logger:      logger,
		concurrency: concurrency,
	}
}

func (s *BookingsService) ListUserBookings(ctx context.Context, userID string, filter presenter.Filter) ([]presenter.BookingView, error) {
	details, err := s.loadUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return presenter.PresentAll(details, filter), nil
}

func (s *BookingsService) GetBooking(ctx context.Context, bookingID int64) (*presenter.BookingView, error) {
	booking, err := s.api.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}

	details, ok := s.loadDetails(ctx, *booking)
	if !ok {
		return nil, ErrIncompleteBooking
	}

	view := presenter.Present(details)
	return &view, nil
}

// Invalidate drops the cached list of a user.
func (s *BookingsService) Invalidate(userID string) {
	s.cache.InvalidateUser(userID)
}

// Watch invalidates cached lists for every cancellation received on events
// until ctx is done or the channel is closed.
func (s *BookingsService) Watch(ctx context.Context, events <-chan domain.CancellationEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.UserID == "" {
				continue
			}
			s.Invalidate(event.UserID)
			s.logger.Debug("bookings cache invalidated",
				zap.String("user_id", event.UserID),
				zap.Int64("booking_id", event.BookingID),
			)
		}
	}
}

func (s *BookingsService) loadUserBookings(ctx context.Context, userID string) ([]domain.BookingDetails, error) {
	// Without a caller token the travel API has to be asked every time.
	token := auth.TokenFrom(ctx)
	if token != "" {
		if cached, ok := s.cache.GetUserBookings(userID, token); ok {
			return cached, nil
		}
	}

	start := time.Now()
	bookings, err := s.api.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	loaded := make([]*domain.BookingDetails, len(bookings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, booking := range bookings {
		g.Go(func() error {
			if d, ok := s.loadDetails(gctx, booking); ok {
				loaded[i] = &d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details := make([]domain.BookingDetails, 0, len(loaded))
	for _, d := range loaded {
		if d != nil {
			details = append(details, *d)
		}
	}

	s.logger.Debug("user bookings loaded",
		zap.String("user_id", userID),
		zap.Int("total", len(bookings)),
		zap.Int("complete", len(details)),
		zap.Duration("took", time.Since(start)),
	)

	if token != "" {
		s.cache.SetUserBookings(userID, token, details)
	}
	return details, nil
}

// loadDetails joins a booking with its passengers, flight, airports and
// payment. ok is false when any part of the flight chain is missing.
func (s *BookingsService) loadDetails(ctx context.Context, booking domain.Booking) (domain.BookingDetails, bool) {
	log := s.logger.With(zap.Int64("booking_id", booking.ID))
	details := domain.BookingDetails{Booking: booking}

	passengers, err := s.api.GetPassengersByBooking(ctx, booking.ID)
	if err != nil {
		log.Warn("load passengers", zap.Error(err))
		return details, false
	}
	details.Passengers = passengers

	if len(passengers) == 0 || passengers[0].FlightSeatID == nil {
		return details, false
	}

	if err := s.loadFlight(ctx, &details, *passengers[0].FlightSeatID); err != nil {
		log.Warn("load flight", zap.Error(err))
		return details, false
	}

	payment, err := s.api.GetPaymentByBooking(ctx, booking.ID)
	if err != nil {
		log.Debug("no payment for booking", zap.Error(err))
	} else {
		details.Payment = payment
	}

	return details, true
}

func (s *BookingsService) loadFlight(ctx context.Context, details *domain.BookingDetails, flightSeatID int64) error {
	seat, err := s.api.GetFlightSeat(ctx, flightSeatID)
	if err != nil {
		return fmt.Errorf("flight seat %d: %w", flightSeatID, err)
	}

	flight, err := s.api.GetFlight(ctx, seat.FlightID)
	if err != nil {
		return fmt.Errorf("flight %d: %w", seat.FlightID, err)
	}

	origin, err := s.api.GetAirport(ctx, flight.OriginAirportID)
	if err != nil {
		return fmt.Errorf("origin airport %d: %w", flight.OriginAirportID, err)
	}

	destination, err := s.api.GetAirport(ctx, flight.DestinationAirportID)
	if err != nil {
		return fmt.Errorf("destination airport %d: %w", flight.DestinationAirportID, err)
	}

	details.Flight = *flight
	details.OriginAirport = *origin
	details.DestinationAirport = *destination
	return nil
}

var _ BookingsUseCase = (*BookingsService)(nil)
