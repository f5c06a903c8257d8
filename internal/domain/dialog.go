package domain

import "time"

type DialogStep string

const (
	DialogStepCalculate DialogStep = "calculate"
	DialogStepConfirm   DialogStep = "confirm"
)

// Dialog is the server-side state of one cancellation wizard. Calculation is
// set only while Step is DialogStepConfirm.
type Dialog struct {
	ID               string             `json:"id"`
	BookingID        int64              `json:"booking_id"`
	BookingReference string             `json:"booking_reference"`
	UserID           string             `json:"user_id"`
	Email            string             `json:"email,omitempty"`
	Step             DialogStep         `json:"step"`
	Calculation      *RefundCalculation `json:"calculation,omitempty"`
	Reason           string             `json:"reason"`
	Error            string             `json:"error,omitempty"`
	Blocked          bool               `json:"blocked"`
	Loading          bool               `json:"loading"`
	Generation       int                `json:"generation"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
