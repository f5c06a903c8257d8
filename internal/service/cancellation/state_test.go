package cancellation

import (
	"errors"
	"testing"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eligibleCalc() domain.RefundCalculation {
	return domain.RefundCalculation{
		BookingID:           7,
		OriginalAmount:      500,
		RefundPercentage:    80,
		CancellationFee:     14.29,
		RefundAmount:        385.71,
		HoursUntilDeparture: 30,
		PolicyApplied:       "24-72 hours before departure",
		CanCancel:           true,
	}
}

func confirmDialog(t *testing.T) domain.Dialog {
	t.Helper()
	d := NewDialog("d1", 7, "BK-2025-001", "u1", "")
	d, err := Reduce(d, CalculationStarted{})
	require.NoError(t, err)
	d, err = Reduce(d, CalculationFinished{Outcome: Eligible{Calculation: eligibleCalc()}})
	require.NoError(t, err)
	return d
}

func TestClassify(t *testing.T) {
	calc := eligibleCalc()
	assert.Equal(t, Eligible{Calculation: calc}, Classify(&calc, nil))

	blocked := domain.RefundCalculation{CanCancel: false, Message: "Flight has already departed"}
	assert.Equal(t, Blocked{Reason: "Flight has already departed", Calculation: blocked}, Classify(&blocked, nil))

	silent := domain.RefundCalculation{CanCancel: false}
	assert.Equal(t, msgCannotCancel, Classify(&silent, nil).(Blocked).Reason)

	boom := errors.New("boom")
	assert.Equal(t, Failed{Err: boom}, Classify(nil, boom))
	assert.IsType(t, Failed{}, Classify(nil, nil))
}

func TestReduce_EligibleMovesToConfirm(t *testing.T) {
	d := confirmDialog(t)

	assert.Equal(t, domain.DialogStepConfirm, d.Step)
	require.NotNil(t, d.Calculation)
	assert.Equal(t, 385.71, d.Calculation.RefundAmount)
	assert.False(t, d.Loading)
	assert.Empty(t, d.Error)
}

func TestReduce_BlockedStaysInCalculate(t *testing.T) {
	d := NewDialog("d1", 7, "BK-1", "u1", "")
	d, _ = Reduce(d, CalculationStarted{})

	d, err := Reduce(d, CalculationFinished{Outcome: Blocked{Reason: "Too close to departure"}})
	require.NoError(t, err)

	assert.Equal(t, domain.DialogStepCalculate, d.Step)
	assert.Nil(t, d.Calculation)
	assert.True(t, d.Blocked)
	assert.Equal(t, "Too close to departure", d.Error)

	_, err = Reduce(d, CalculationStarted{})
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = Reduce(d, SubmitStarted{})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestReduce_FailedCalculationIsRetryable(t *testing.T) {
	d := NewDialog("d1", 7, "BK-1", "u1", "")
	d, _ = Reduce(d, CalculationStarted{})

	d, err := Reduce(d, CalculationFinished{Outcome: Failed{Err: errors.New("timeout")}})
	require.NoError(t, err)
	assert.Equal(t, domain.DialogStepCalculate, d.Step)
	assert.Equal(t, msgCalculateFailed, d.Error)
	assert.False(t, d.Blocked)

	d, err = Reduce(d, CalculationStarted{})
	require.NoError(t, err)
	assert.True(t, d.Loading)
	assert.Empty(t, d.Error)
}

func TestReduce_SecondRequestWhileLoading(t *testing.T) {
	d := NewDialog("d1", 7, "BK-1", "u1", "")
	d, _ = Reduce(d, CalculationStarted{})

	_, err := Reduce(d, CalculationStarted{})
	assert.ErrorIs(t, err, ErrDialogBusy)

	c := confirmDialog(t)
	c, _ = Reduce(c, SubmitStarted{})
	_, err = Reduce(c, SubmitStarted{})
	assert.ErrorIs(t, err, ErrDialogBusy)
	_, err = Reduce(c, ReasonChanged{Reason: "x"})
	assert.ErrorIs(t, err, ErrDialogBusy)
}

func TestReduce_InvalidTransitions(t *testing.T) {
	initial := NewDialog("d1", 7, "BK-1", "u1", "")

	_, err := Reduce(initial, CalculationFinished{Outcome: Eligible{}})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Reduce(initial, ReasonChanged{Reason: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Reduce(initial, SubmitStarted{})
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = Reduce(initial, SubmitSucceeded{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Reduce(confirmDialog(t), CalculationStarted{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReduce_SubmitFailureStaysInConfirm(t *testing.T) {
	d := confirmDialog(t)
	d, _ = Reduce(d, ReasonChanged{Reason: "plans changed"})
	d, _ = Reduce(d, SubmitStarted{})

	d, err := Reduce(d, SubmitFailed{Message: "Refund already requested"})
	require.NoError(t, err)
	assert.Equal(t, domain.DialogStepConfirm, d.Step)
	assert.Equal(t, "Refund already requested", d.Error)
	assert.Equal(t, "plans changed", d.Reason)
	assert.NotNil(t, d.Calculation)

	d, _ = Reduce(d, SubmitStarted{})
	d, _ = Reduce(d, SubmitFailed{})
	assert.Equal(t, msgCancelFailed, d.Error)
}

func TestReduce_SubmitSuccessResets(t *testing.T) {
	d := confirmDialog(t)
	d, _ = Reduce(d, ReasonChanged{Reason: "plans changed"})
	d, _ = Reduce(d, SubmitStarted{})

	d, err := Reduce(d, SubmitSucceeded{})
	require.NoError(t, err)

	assert.Equal(t, NewDialog("d1", 7, "BK-2025-001", "u1", ""), withGeneration(d, 0))
	assert.Equal(t, 1, d.Generation)
}

func TestReduce_CloseAlwaysResets(t *testing.T) {
	blocked := NewDialog("d1", 7, "BK-1", "u1", "")
	blocked, _ = Reduce(blocked, CalculationStarted{})
	blocked, _ = Reduce(blocked, CalculationFinished{Outcome: Blocked{Reason: "no"}})

	loading := confirmDialog(t)
	loading, _ = Reduce(loading, SubmitStarted{})

	for name, d := range map[string]domain.Dialog{
		"initial": NewDialog("d1", 7, "BK-1", "u1", ""),
		"blocked": blocked,
		"confirm": confirmDialog(t),
		"loading": loading,
	} {
		t.Run(name, func(t *testing.T) {
			closed, err := Reduce(d, Closed{})
			require.NoError(t, err)
			assert.Equal(t, domain.DialogStepCalculate, closed.Step)
			assert.Nil(t, closed.Calculation)
			assert.Empty(t, closed.Reason)
			assert.Empty(t, closed.Error)
			assert.False(t, closed.Blocked)
			assert.False(t, closed.Loading)
			assert.Equal(t, d.Generation+1, closed.Generation)

			twice, err := Reduce(closed, Closed{})
			require.NoError(t, err)
			assert.Equal(t, withGeneration(closed, 0), withGeneration(twice, 0))
		})
	}
}

func TestRefundReasonAndNotes(t *testing.T) {
	assert.Equal(t, DefaultReason, RefundReason(""))
	assert.Equal(t, "sick", RefundReason("sick"))
	assert.Equal(t, "Booking reference: BK-2025-001", RefundNotes("BK-2025-001"))
}

func withGeneration(d domain.Dialog, gen int) domain.Dialog {
	d.Generation = gen
	return d
}
