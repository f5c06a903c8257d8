package domain

import "time"

// RefundCalculation is computed by the travel API on every cancellation
// attempt and is never stored here.
type RefundCalculation struct {
	BookingID           int64   `json:"booking_id"`
	OriginalAmount      float64 `json:"original_amount"`
	RefundPercentage    float64 `json:"refund_percentage"`
	CancellationFee     float64 `json:"cancellation_fee"`
	RefundAmount        float64 `json:"refund_amount"`
	HoursUntilDeparture float64 `json:"hours_until_departure"`
	PolicyApplied       string  `json:"policy_applied"`
	CanCancel           bool    `json:"can_cancel"`
	Message             string  `json:"message,omitempty"`
}

type RefundRequest struct {
	BookingID    int64  `json:"booking_id"`
	RefundReason string `json:"refund_reason"`
	Notes        string `json:"notes"`
}

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
	RefundStatusCompleted RefundStatus = "completed"
)

type Refund struct {
	ID               int64        `json:"refund_id"`
	BookingID        int64        `json:"booking_id"`
	PaymentID        *int64       `json:"payment_id,omitempty"`
	RefundAmount     Amount       `json:"refund_amount"`
	RefundPercentage Amount       `json:"refund_percentage"`
	CancellationFee  Amount       `json:"cancellation_fee"`
	RefundReason     string       `json:"refund_reason,omitempty"`
	Status           RefundStatus `json:"status"`
	RequestedBy      string       `json:"requested_by"`
	ProcessedBy      string       `json:"processed_by,omitempty"`
	RequestedAt      Timestamp    `json:"requested_at"`
	ProcessedAt      Timestamp    `json:"processed_at"`
	Notes            string       `json:"notes,omitempty"`
}

type CancellationPolicy struct {
	ID                   int64   `json:"policy_id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description,omitempty"`
	HoursBeforeDeparture float64 `json:"hours_before_departure"`
	RefundPercentage     Amount  `json:"refund_percentage"`
	CancellationFee      Amount  `json:"cancellation_fee"`
	IsActive             string  `json:"is_active"`
}

const EventBookingCancelled = "booking_cancelled"

// CancellationEvent is emitted once a refund request has been accepted by the
// travel API. Observers re-fetch whatever they display for the booking.
type CancellationEvent struct {
	Type             string    `json:"type"`
	DialogID         string    `json:"dialog_id"`
	BookingID        int64     `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	UserID           string    `json:"user_id"`
	RefundID         int64     `json:"refund_id"`
	RefundAmount     float64   `json:"refund_amount"`
	Reason           string    `json:"reason"`
	Email            string    `json:"email,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// CancellationRecord is the local audit row for a submitted refund request.
type CancellationRecord struct {
	ID               int64     `json:"id"`
	DialogID         string    `json:"dialog_id"`
	BookingID        int64     `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	UserID           string    `json:"user_id"`
	RefundID         int64     `json:"refund_id"`
	RefundAmount     float64   `json:"refund_amount"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
}
