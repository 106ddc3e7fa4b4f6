package rental

import "fmt"

// Action is a staff (or customer, for cancel) operation on an order.
type Action string

const (
	ActionConfirmDeposit Action = "confirm_deposit"
	ActionCheckIn        Action = "check_in"
	ActionRecordDelivery Action = "record_delivery"
	ActionRecordReturn   Action = "record_return"
	ActionUpdateFees     Action = "update_fees"
	ActionConfirmTotal   Action = "confirm_total"
	ActionConfirmPayment Action = "confirm_payment"
	ActionCancel         Action = "cancel"
	ActionRefundDeposit  Action = "refund_deposit"
)

type transition struct {
	from []Status
	to   Status
}

var transitions = map[Action]transition{
	ActionConfirmDeposit: {from: []Status{StatusPending, StatusDocumentsSubmitted}, to: StatusConfirmed},
	ActionCheckIn:        {from: []Status{StatusConfirmed}, to: StatusCheckedIn},
	ActionRecordDelivery: {from: []Status{StatusCheckedIn}, to: StatusRenting},
	ActionRecordReturn:   {from: []Status{StatusRenting}, to: StatusReturned},
	ActionUpdateFees:     {from: []Status{StatusReturned}, to: StatusReturned},
	ActionConfirmTotal:   {from: []Status{StatusReturned}, to: StatusPaymentPending},
	ActionConfirmPayment: {from: []Status{StatusPaymentPending}, to: StatusCompleted},
	ActionCancel:         {from: []Status{StatusPending, StatusDocumentsSubmitted, StatusConfirmed}, to: StatusCancelled},
	ActionRefundDeposit:  {from: []Status{StatusCancelled}, to: StatusRefunded},
}

// actionOrder fixes the order AvailableActions reports actions in.
var actionOrder = []Action{
	ActionConfirmDeposit,
	ActionCheckIn,
	ActionRecordDelivery,
	ActionRecordReturn,
	ActionUpdateFees,
	ActionConfirmTotal,
	ActionConfirmPayment,
	ActionRefundDeposit,
	ActionCancel,
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Allowed reports whether a may run while the order is in s.
func (a Action) Allowed(s Status) bool {
	t, ok := transitions[a]
	if !ok {
		return false
	}
	for _, f := range t.from {
		if f == s {
			return true
		}
	}
	return false
}

// Transition returns the status an order moves to when a runs in s.
func Transition(s Status, a Action) (Status, error) {
	t, ok := transitions[a]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !a.Allowed(s) {
		return s, fmt.Errorf("%w: %s from %s", ErrActionNotAllowed, a, s)
	}
	return t.to, nil
}

// AvailableActions is the set of buttons the staff console shows for s.
func AvailableActions(s Status) []Action {
	var out []Action
	for _, a := range actionOrder {
		if a.Allowed(s) {
			out = append(out, a)
		}
	}
	return out
}

// MaxInspectionPhotos caps photos attached to a delivery or return record.
const MaxInspectionPhotos = 6

// Inspection is the vehicle state captured at delivery and at return.
type Inspection struct {
	OdometerKm     int      `json:"odometer_km"`
	BatteryPercent int      `json:"battery_percent"`
	Condition      string   `json:"condition"`
	Photos         []string `json:"photos"`
}

func (i Inspection) Validate() error {
	switch {
	case i.OdometerKm < 0:
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalidInspection)
	case i.BatteryPercent < 0 || i.BatteryPercent > 100:
		return fmt.Errorf("%w: battery must be between 0 and 100", ErrInvalidInspection)
	case len(i.Photos) > MaxInspectionPhotos:
		return fmt.Errorf("%w: at most %d photos", ErrInvalidInspection, MaxInspectionPhotos)
	}
	return nil
}
