package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const PendingBookingsPath = "/my-service-bookings"

var ErrPendingServiceBookings = errors.New("you have pending service bookings that need payment, please complete payment before booking another service")

// PendingError lists the unpaid service bookings that blocked a new one.
type PendingError struct {
	BookingIDs []int64
}

func (e *PendingError) Error() string {
	return ErrPendingServiceBookings.Error()
}

func (e *PendingError) Unwrap() error {
	return ErrPendingServiceBookings
}

// Redirect is where the user settles the pending bookings.
func (e *PendingError) Redirect() string {
	return PendingBookingsPath
}

type ReservationUseCase interface {
	BookService(ctx context.Context, input BookServiceInput) (*BookServiceResult, error)
	FindPendingServiceBookings(ctx context.Context, userID string) ([]int64, error)
}

type TravelAPI interface {
	GetUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	GetBookingServices(ctx context.Context, bookingID int64) ([]domain.BookingService, error)
	GetPaymentByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	CreateBooking(ctx context.Context, input domain.BookingCreate) (*domain.Booking, error)
	AddServiceToBooking(ctx context.Context, input domain.BookingServiceCreate) (*domain.BookingService, error)
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
}

// BookServiceInput describes a new service booking. ListingID is the
// catalogue entry the user picked and defaults to ServiceID. An empty Name is
// looked up from the service catalogue.
type BookServiceInput struct {
	UserID      string             `json:"user_id" validate:"required"`
	ServiceType domain.ServiceType `json:"service_type" validate:"required,oneof=hotel rental_car package"`
	ServiceID   int64              `json:"service_id" validate:"required,gt=0"`
	ListingID   int64              `json:"listing_id" validate:"gte=0"`
	Name        string             `json:"name"`
}

type BookServiceResult struct {
	Booking        domain.Booking        `json:"booking"`
	BookingService domain.BookingService `json:"booking_service"`
	RedirectURL    string                `json:"redirect_url"`
}

type ReservationService struct {
	api         TravelAPI
	logger      *zap.Logger
	validate    *validator.Validate
	concurrency int
}

func NewReservationService(api TravelAPI, concurrency int, logger *zap.Logger) *ReservationService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ReservationService{
		api:         api,
		logger:      logger,
		validate:    validator.New(),
		concurrency: concurrency,
	}
}

func (s *ReservationService) BookService(ctx context.Context, input BookServiceInput) (*BookServiceResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid service booking input: %w", err)
	}

	pending, err := s.FindPendingServiceBookings(ctx, input.UserID)
	if err != nil {
		// The travel API enforces its own rules, so a failed scan does not block.
		s.logger.Warn("check pending service bookings", zap.String("user_id", input.UserID), zap.Error(err))
	}
	if len(pending) > 0 {
		s.logger.Info("service booking blocked by unpaid bookings",
			zap.String("user_id", input.UserID),
			zap.Int64s("pending", pending),
		)
		return nil, &PendingError{BookingIDs: pending}
	}

	if input.Name == "" {
		service, err := s.api.GetService(ctx, input.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("get service %d: %w", input.ServiceID, err)
		}
		input.Name = service.Name
	}

	booking, err := s.api.CreateBooking(ctx, domain.BookingCreate{
		UserID: input.UserID,
		Status: domain.BookingStatusPending,
		Notes:  BookingNotes(input.ServiceType, input.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	attached, err := s.api.AddServiceToBooking(ctx, domain.BookingServiceCreate{
		BookingID: booking.ID,
		ServiceID: input.ServiceID,
		Quantity:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("attach service %d to booking %d: %w", input.ServiceID, booking.ID, err)
	}

	listingID := input.ListingID
	if listingID == 0 {
		listingID = input.ServiceID
	}

	s.logger.Info("service booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("service_type", string(input.ServiceType)),
		zap.Int64("service_id", input.ServiceID),
	)

	return &BookServiceResult{
		Booking:        *booking,
		BookingService: *attached,
		RedirectURL:    PaymentURL(booking.ID, input.ServiceType, listingID),
	}, nil
}

// FindPendingServiceBookings returns the ids of the user's bookings that
// carry services and are not both confirmed and paid. Bookings whose services
// cannot be loaded are skipped.
func (s *ReservationService) FindPendingServiceBookings(ctx context.Context, userID string) ([]int64, error) {
	bookings, err := s.api.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	var (
		mu      sync.Mutex
		pending []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, booking := range bookings {
		g.Go(func() error {
			if s.isPendingServiceBooking(gctx, booking) {
				mu.Lock()
				pending = append(pending, booking.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	return pending, nil
}

func (s *ReservationService) isPendingServiceBooking(ctx context.Context, booking domain.Booking) bool {
	services, err := s.api.GetBookingServices(ctx, booking.ID)
	if err != nil || len(services) == 0 {
		return false
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return true
	}

	payment, err := s.api.GetPaymentByBooking(ctx, booking.ID)
	if err != nil {
		return true
	}
	return !payment.Succeeded()
}

// BookingNotes is the notes text of a new service booking.
func BookingNotes(kind domain.ServiceType, name string) string {
	switch kind {
	case domain.ServiceHotel:
		return "Hotel booking for " + name
	case domain.ServiceRentalCar:
		return "Car rental booking for " + name
	default:
		return "Package booking for " + name
	}
}

// PaymentURL is the payment screen for a freshly created service booking.
func PaymentURL(bookingID int64, kind domain.ServiceType, listingID int64) string {
	return "/payment?bookingId=" + strconv.FormatInt(bookingID, 10) +
		"&serviceType=" + url.QueryEscape(paymentServiceType(kind)) +
		"&serviceId=" + strconv.FormatInt(listingID, 10)
}

// The payment screen calls rental cars "car_rental".
func paymentServiceType(kind domain.ServiceType) string {
	if kind == domain.ServiceRentalCar {
		return "car_rental"
	}
	return string(kind)
}

var _ ReservationUseCase = (*ReservationService)(nil)
