package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/travelapi"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CancellationUseCase interface {
	Open(ctx context.Context, input OpenInput) (*domain.Dialog, error)
	Get(ctx context.Context, dialogID string) (*domain.Dialog, error)
	RequestCalculation(ctx context.Context, dialogID string) (*domain.Dialog, error)
	SetReason(ctx context.Context, dialogID, reason string) (*domain.Dialog, error)
	ConfirmCancellation(ctx context.Context, dialogID string, reason *string) (*ConfirmResult, error)
	Close(ctx context.Context, dialogID string) error
	History(ctx context.Context, bookingID int64) ([]domain.CancellationRecord, error)
}

// RefundGateway is the part of the travel API the wizard talks to.
type RefundGateway interface {
	CalculateRefund(ctx context.Context, bookingID int64) (*domain.RefundCalculation, error)
	CreateRefundRequest(ctx context.Context, req domain.RefundRequest) (*domain.Refund, error)
}

// Store keeps dialogs between requests and serialises requests per dialog.
type Store interface {
	SaveDialog(ctx context.Context, dialog domain.Dialog) error
	LoadDialog(ctx context.Context, dialogID string) (*domain.Dialog, error)
	AcquireDialogLock(ctx context.Context, dialogID string, ttl time.Duration) (bool, error)
	ReleaseDialogLock(ctx context.Context, dialogID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type AuditRepository interface {
	Record(ctx context.Context, record *domain.CancellationRecord) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.CancellationRecord, error)
}

type OpenInput struct {
	BookingID        int64  `json:"booking_id" validate:"required,gt=0"`
	BookingReference string `json:"booking_reference" validate:"required"`
	UserID           string `json:"user_id"`
	Email            string `json:"email" validate:"omitempty,email"`
}

type ConfirmResult struct {
	Dialog domain.Dialog
	Refund *domain.Refund
}

type CancellationService struct {
	refunds            RefundGateway
	store              Store
	producer           Producer
	audit              AuditRepository
	logger             *zap.Logger
	validate           *validator.Validate
	events             *broadcaster
	cancellationsTopic string
	notificationsTopic string
	lockTTL            time.Duration
	now                func() time.Time
}

type CancellationServiceOption func(*CancellationService)

func WithProducer(producer Producer, cancellationsTopic string) CancellationServiceOption {
	return func(s *CancellationService) {
		s.producer = producer
		s.cancellationsTopic = cancellationsTopic
	}
}

func WithNotificationsTopic(topic string) CancellationServiceOption {
	return func(s *CancellationService) {
		s.notificationsTopic = topic
	}
}

func WithAuditRepository(repo AuditRepository) CancellationServiceOption {
	return func(s *CancellationService) {
		s.audit = repo
	}
}

func WithClock(now func() time.Time) CancellationServiceOption {
	return func(s *CancellationService) {
		s.now = now
	}
}

func NewCancellationService(
	refunds RefundGateway,
	store Store,
	lockTTL time.Duration,
	logger *zap.Logger,
	opts ...CancellationServiceOption,
) *CancellationService {
	service := &CancellationService{
		refunds:  refunds,
		store:    store,
		logger:   logger,
		validate: validator.New(),
		events:   newBroadcaster(),
		lockTTL:  lockTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Subscribe registers an observer for accepted cancellations. The returned
// function unsubscribes and closes the channel.
func (s *CancellationService) Subscribe() (<-chan domain.CancellationEvent, func()) {
	return s.events.subscribe(16)
}

func (s *CancellationService) Open(ctx context.Context, input OpenInput) (*domain.Dialog, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid cancellation input: %w", err)
	}

	dialog := NewDialog(uuid.NewString(), input.BookingID, input.BookingReference, input.UserID, input.Email)
	if err := s.save(ctx, &dialog); err != nil {
		return nil, err
	}

	s.logger.Info("cancellation dialog opened",
		zap.String("dialog_id", dialog.ID),
		zap.Int64("booking_id", dialog.BookingID),
	)
	return &dialog, nil
}

func (s *CancellationService) Get(ctx context.Context, dialogID string) (*domain.Dialog, error) {
	return s.load(ctx, dialogID)
}

func (s *CancellationService) RequestCalculation(ctx context.Context, dialogID string) (*domain.Dialog, error) {
	unlock, err := s.lock(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dialog, err := s.begin(ctx, dialogID, CalculationStarted{})
	if err != nil {
		return nil, err
	}

	calc, callErr := s.refunds.CalculateRefund(ctx, dialog.BookingID)
	outcome := Classify(calc, callErr)
	switch o := outcome.(type) {
	case Failed:
		s.logger.Warn("refund calculation failed", zap.String("dialog_id", dialogID), zap.Error(o.Err))
	case Blocked:
		s.logger.Info("cancellation refused by policy",
			zap.String("dialog_id", dialogID),
			zap.Int64("booking_id", dialog.BookingID),
			zap.String("reason", o.Reason),
		)
	}

	return s.finish(ctx, dialog, CalculationFinished{Outcome: outcome})
}

func (s *CancellationService) SetReason(ctx context.Context, dialogID, reason string) (*domain.Dialog, error) {
	unlock, err := s.lock(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dialog, err := s.begin(ctx, dialogID, ReasonChanged{Reason: reason})
	if err != nil {
		return nil, err
	}
	return dialog, nil
}

func (s *CancellationService) ConfirmCancellation(ctx context.Context, dialogID string, reason *string) (*ConfirmResult, error) {
	unlock, err := s.lock(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dialog, err := s.load(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	// Holding the lock means no request is in flight, so a leftover flag
	// belongs to an interrupted one.
	dialog.Loading = false

	next := *dialog
	if reason != nil {
		if next, err = Reduce(next, ReasonChanged{Reason: *reason}); err != nil {
			return nil, err
		}
	}
	if next, err = Reduce(next, SubmitStarted{}); err != nil {
		return nil, err
	}
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}

	req := domain.RefundRequest{
		BookingID:    next.BookingID,
		RefundReason: RefundReason(next.Reason),
		Notes:        RefundNotes(next.BookingReference),
	}
	refund, callErr := s.refunds.CreateRefundRequest(ctx, req)
	if callErr != nil {
		s.logger.Warn("refund request failed", zap.String("dialog_id", dialogID), zap.Error(callErr))
		updated, err := s.finish(ctx, &next, SubmitFailed{Message: displayMessage(callErr, msgCancelFailed)})
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Dialog: *updated}, nil
	}

	event := domain.CancellationEvent{
		Type:             domain.EventBookingCancelled,
		DialogID:         next.ID,
		BookingID:        next.BookingID,
		BookingReference: next.BookingReference,
		UserID:           next.UserID,
		RefundID:         refund.ID,
		RefundAmount:     refund.RefundAmount.Float64(),
		Reason:           req.RefundReason,
		Email:            next.Email,
		OccurredAt:       s.now(),
	}
	if next.Calculation != nil && event.RefundAmount == 0 {
		event.RefundAmount = next.Calculation.RefundAmount
	}

	// Reset before side effects: a confirm that gets the lock after it
	// expired must find nothing to submit.
	updated, err := s.finish(ctx, &next, SubmitSucceeded{})
	if err != nil {
		s.afterCancellation(ctx, event)
		return nil, err
	}
	s.afterCancellation(ctx, event)
	return &ConfirmResult{Dialog: *updated, Refund: refund}, nil
}

// Close resets the dialog to its first step. Unknown dialogs are ignored.
func (s *CancellationService) Close(ctx context.Context, dialogID string) error {
	dialog, err := s.store.LoadDialog(ctx, dialogID)
	if err != nil {
		return fmt.Errorf("load dialog: %w", err)
	}
	if dialog == nil {
		return nil
	}

	closed, _ := Reduce(*dialog, Closed{})
	return s.save(ctx, &closed)
}

func (s *CancellationService) History(ctx context.Context, bookingID int64) ([]domain.CancellationRecord, error) {
	if s.audit == nil {
		return []domain.CancellationRecord{}, nil
	}
	return s.audit.ListByBooking(ctx, bookingID)
}

func (s *CancellationService) lock(ctx context.Context, dialogID string) (func(), error) {
	ok, err := s.store.AcquireDialogLock(ctx, dialogID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire dialog lock: %w", err)
	}
	if !ok {
		return nil, ErrDialogBusy
	}
	return func() {
		if err := s.store.ReleaseDialogLock(context.WithoutCancel(ctx), dialogID); err != nil {
			s.logger.Warn("release dialog lock", zap.String("dialog_id", dialogID), zap.Error(err))
		}
	}, nil
}

// begin loads the dialog, applies ev and stores the result.
func (s *CancellationService) begin(ctx context.Context, dialogID string, ev Event) (*domain.Dialog, error) {
	dialog, err := s.load(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	dialog.Loading = false

	next, err := Reduce(*dialog, ev)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// finish applies the completion event unless the dialog was closed while the
// request was running, in which case the stored state wins.
func (s *CancellationService) finish(ctx context.Context, started *domain.Dialog, ev Event) (*domain.Dialog, error) {
	ctx = context.WithoutCancel(ctx)

	current, err := s.store.LoadDialog(ctx, started.ID)
	if err != nil {
		return nil, fmt.Errorf("load dialog: %w", err)
	}
	if current == nil || current.Generation != started.Generation {
		s.logger.Debug("dialog changed while request was running, dropping result", zap.String("dialog_id", started.ID))
		if current == nil {
			return nil, ErrDialogNotFound
		}
		return current, nil
	}

	next, err := Reduce(*current, ev)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *CancellationService) afterCancellation(ctx context.Context, event domain.CancellationEvent) {
	ctx = context.WithoutCancel(ctx)

	s.logger.Info("booking cancellation submitted",
		zap.String("dialog_id", event.DialogID),
		zap.Int64("booking_id", event.BookingID),
		zap.Int64("refund_id", event.RefundID),
	)

	s.events.publish(event)

	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn("publish cancellation event", zap.Int64("booking_id", event.BookingID), zap.Error(err))
	}

	if s.audit != nil {
		record := &domain.CancellationRecord{
			DialogID:         event.DialogID,
			BookingID:        event.BookingID,
			BookingReference: event.BookingReference,
			UserID:           event.UserID,
			RefundID:         event.RefundID,
			RefundAmount:     event.RefundAmount,
			Reason:           event.Reason,
		}
		if err := s.audit.Record(ctx, record); err != nil {
			s.logger.Warn("record cancellation", zap.Int64("booking_id", event.BookingID), zap.Error(err))
		}
	}
}

func (s *CancellationService) publish(ctx context.Context, event domain.CancellationEvent) error {
	if s.producer == nil || s.cancellationsTopic == "" {
		return nil
	}
	key := event.BookingReference
	if err := s.producer.Publish(ctx, s.cancellationsTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

func (s *CancellationService) load(ctx context.Context, dialogID string) (*domain.Dialog, error) {
	dialog, err := s.store.LoadDialog(ctx, dialogID)
	if err != nil {
		return nil, fmt.Errorf("load dialog: %w", err)
	}
	if dialog == nil {
		return nil, ErrDialogNotFound
	}
	return dialog, nil
}

func (s *CancellationService) save(ctx context.Context, dialog *domain.Dialog) error {
	dialog.UpdatedAt = s.now()
	if err := s.store.SaveDialog(ctx, *dialog); err != nil {
		return fmt.Errorf("save dialog: %w", err)
	}
	return nil
}

// displayMessage returns the server's message for API errors and fallback
// for everything else.
func displayMessage(err error, fallback string) string {
	var apiErr *travelapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

var _ CancellationUseCase = (*CancellationService)(nil)
