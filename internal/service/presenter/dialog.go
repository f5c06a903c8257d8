package presenter

import (
	"strconv"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/format"
)

// Breakdown is the refund calculation as the confirm step shows it.
type Breakdown struct {
	TimeUntilDeparture string  `json:"time_until_departure"`
	PolicyApplied      string  `json:"policy_applied"`
	OriginalAmount     string  `json:"original_amount"`
	RefundPercentage   string  `json:"refund_percentage"`
	CancellationFee    string  `json:"cancellation_fee"`
	RefundAmount       string  `json:"refund_amount"`
	RefundValue        float64 `json:"refund_value"`
}

type DialogView struct {
	ID               string                    `json:"id"`
	BookingID        int64                     `json:"booking_id"`
	BookingReference string                    `json:"booking_reference"`
	Step             domain.DialogStep         `json:"step"`
	Loading          bool                      `json:"loading"`
	Blocked          bool                      `json:"blocked"`
	Error            string                    `json:"error,omitempty"`
	Reason           string                    `json:"reason,omitempty"`
	CanConfirm       bool                      `json:"can_confirm"`
	Breakdown        *Breakdown                `json:"breakdown,omitempty"`
	Calculation      *domain.RefundCalculation `json:"calculation,omitempty"`
}

func PresentDialog(d domain.Dialog) DialogView {
	view := DialogView{
		ID:               d.ID,
		BookingID:        d.BookingID,
		BookingReference: d.BookingReference,
		Step:             d.Step,
		Loading:          d.Loading,
		Blocked:          d.Blocked,
		Error:            d.Error,
		Reason:           d.Reason,
		Calculation:      d.Calculation,
	}
	if d.Calculation != nil {
		b := PresentBreakdown(*d.Calculation)
		view.Breakdown = &b
		view.CanConfirm = d.Step == domain.DialogStepConfirm && d.Calculation.CanCancel && !d.Loading
	}
	return view
}

func PresentBreakdown(c domain.RefundCalculation) Breakdown {
	return Breakdown{
		TimeUntilDeparture: format.Hours(c.HoursUntilDeparture),
		PolicyApplied:      c.PolicyApplied,
		OriginalAmount:     format.Currency(c.OriginalAmount),
		RefundPercentage:   strconv.FormatFloat(c.RefundPercentage, 'f', -1, 64) + "%",
		CancellationFee:    format.Currency(c.CancellationFee),
		RefundAmount:       format.Currency(c.RefundAmount),
		RefundValue:        c.RefundAmount,
	}
}
