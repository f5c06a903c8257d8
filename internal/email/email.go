package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbook/internal/auth"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/format"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// RecipientLookup finds passengers of a booking when the event carries no
// address.
type RecipientLookup interface {
	GetPassengersByBooking(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
}

// Sender turns cancellation events into customer notifications. Delivery is
// a log line until a mail provider is configured.
type Sender struct {
	logger     *zap.Logger
	recipients RecipientLookup
}

type SenderOption func(*Sender)

func WithRecipientLookup(lookup RecipientLookup) SenderOption {
	return func(s *Sender) {
		s.recipients = lookup
	}
}

func NewSender(logger *zap.Logger, opts ...SenderOption) *Sender {
	s := &Sender{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, event domain.CancellationEvent) error {
	if event.Email == "" {
		event.Email = s.lookupRecipient(ctx, event.BookingID)
	}
	if event.Email == "" {
		s.logger.Debug("no email address for cancellation", zap.Int64("booking_id", event.BookingID))
		return nil
	}

	msg := Compose(event)
	s.logger.Info("send email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int64("booking_id", event.BookingID),
	)
	return nil
}

// lookupRecipient returns the first passenger address of the booking. The
// worker has no caller, so the travel API is called with the service token.
func (s *Sender) lookupRecipient(ctx context.Context, bookingID int64) string {
	if s.recipients == nil {
		return ""
	}
	passengers, err := s.recipients.GetPassengersByBooking(auth.AsService(ctx), bookingID)
	if err != nil {
		s.logger.Warn("look up passengers for notification", zap.Int64("booking_id", bookingID), zap.Error(err))
		return ""
	}
	for _, p := range passengers {
		if p.Email != "" {
			return p.Email
		}
	}
	return ""
}

func Compose(event domain.CancellationEvent) Message {
	return Message{
		To:      event.Email,
		Subject: fmt.Sprintf("Booking %s cancelled", event.BookingReference),
		Body: fmt.Sprintf(
			"Your booking %s has been cancelled.\nReason: %s\nRefund: %s (request #%d)\nThe refund is processed after review.",
			event.BookingReference,
			event.Reason,
			format.Currency(event.RefundAmount),
			event.RefundID,
		),
	}
}
