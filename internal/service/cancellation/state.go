package cancellation

import (
	"errors"

	"github.com/Domenick1991/travelbook/internal/domain"
)

const (
	DefaultReason      = "Customer requested cancellation"
	msgCalculateFailed = "Failed to calculate refund"
	msgCancelFailed    = "Failed to cancel booking"
	msgCannotCancel    = "This booking cannot be cancelled"
)

var (
	ErrDialogNotFound    = errors.New("cancellation dialog not found")
	ErrDialogBusy        = errors.New("a request for this dialog is already in progress")
	ErrNotEligible       = errors.New("booking is not eligible for cancellation")
	ErrBlocked           = errors.New("cancellation was refused for this booking, close the dialog to start over")
	ErrInvalidTransition = errors.New("action is not allowed in the current step")
)

// Outcome is the classified result of a refund calculation call.
type Outcome interface {
	outcome()
}

type Eligible struct {
	Calculation domain.RefundCalculation
}

type Blocked struct {
	Reason      string
	Calculation domain.RefundCalculation
}

type Failed struct {
	Err error
}

func (Eligible) outcome() {}
func (Blocked) outcome()  {}
func (Failed) outcome()   {}

// Classify turns the raw calculation response into an Outcome.
func Classify(calc *domain.RefundCalculation, err error) Outcome {
	if err != nil {
		return Failed{Err: err}
	}
	if calc == nil {
		return Failed{Err: errors.New("empty refund calculation")}
	}
	if !calc.CanCancel {
		reason := calc.Message
		if reason == "" {
			reason = msgCannotCancel
		}
		return Blocked{Reason: reason, Calculation: *calc}
	}
	return Eligible{Calculation: *calc}
}

// Event drives a dialog transition.
type Event interface {
	event()
}

type CalculationStarted struct{}

type CalculationFinished struct {
	Outcome Outcome
}

type ReasonChanged struct {
	Reason string
}

type SubmitStarted struct{}

type SubmitFailed struct {
	Message string
}

type SubmitSucceeded struct{}

type Closed struct{}

func (CalculationStarted) event()  {}
func (CalculationFinished) event() {}
func (ReasonChanged) event()       {}
func (SubmitStarted) event()       {}
func (SubmitFailed) event()        {}
func (SubmitSucceeded) event()     {}
func (Closed) event()              {}

// NewDialog returns a dialog in its initial state.
func NewDialog(id string, bookingID int64, reference, userID, email string) domain.Dialog {
	return domain.Dialog{
		ID:               id,
		BookingID:        bookingID,
		BookingReference: reference,
		UserID:           userID,
		Email:            email,
		Step:             domain.DialogStepCalculate,
	}
}

// Reduce applies ev to d. On error d is returned unchanged.
func Reduce(d domain.Dialog, ev Event) (domain.Dialog, error) {
	switch e := ev.(type) {
	case Closed:
		return reset(d), nil

	case CalculationStarted:
		if d.Loading {
			return d, ErrDialogBusy
		}
		if d.Blocked {
			return d, ErrBlocked
		}
		if d.Step != domain.DialogStepCalculate {
			return d, ErrInvalidTransition
		}
		d.Loading = true
		d.Error = ""
		return d, nil

	case CalculationFinished:
		if !d.Loading || d.Step != domain.DialogStepCalculate {
			return d, ErrInvalidTransition
		}
		d.Loading = false
		switch o := e.Outcome.(type) {
		case Eligible:
			calc := o.Calculation
			d.Step = domain.DialogStepConfirm
			d.Calculation = &calc
			d.Error = ""
		case Blocked:
			d.Blocked = true
			d.Error = o.Reason
		default:
			d.Error = msgCalculateFailed
		}
		return d, nil

	case ReasonChanged:
		if d.Loading {
			return d, ErrDialogBusy
		}
		if d.Step != domain.DialogStepConfirm {
			return d, ErrInvalidTransition
		}
		d.Reason = e.Reason
		return d, nil

	case SubmitStarted:
		if d.Loading {
			return d, ErrDialogBusy
		}
		if d.Step != domain.DialogStepConfirm || d.Calculation == nil || !d.Calculation.CanCancel {
			return d, ErrNotEligible
		}
		d.Loading = true
		d.Error = ""
		return d, nil

	case SubmitFailed:
		if !d.Loading || d.Step != domain.DialogStepConfirm {
			return d, ErrInvalidTransition
		}
		d.Loading = false
		d.Error = e.Message
		if d.Error == "" {
			d.Error = msgCancelFailed
		}
		return d, nil

	case SubmitSucceeded:
		if !d.Loading || d.Step != domain.DialogStepConfirm {
			return d, ErrInvalidTransition
		}
		return reset(d), nil
	}

	return d, ErrInvalidTransition
}

func reset(d domain.Dialog) domain.Dialog {
	next := NewDialog(d.ID, d.BookingID, d.BookingReference, d.UserID, d.Email)
	next.Generation = d.Generation + 1
	return next
}

// RefundReason is the reason submitted with the refund request.
func RefundReason(reason string) string {
	if reason == "" {
		return DefaultReason
	}
	return reason
}

// RefundNotes is the notes field submitted with the refund request.
func RefundNotes(reference string) string {
	return "Booking reference: " + reference
}
