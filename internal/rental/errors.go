package rental

import "errors"

var (
	ErrInvalidRange      = errors.New("return time must be after pickup time")
	ErrBookingConflict   = errors.New("car is already booked for the selected dates")
	ErrActionNotAllowed  = errors.New("action not allowed for current order status")
	ErrUnknownAction     = errors.New("unknown order action")
	ErrInvalidInspection = errors.New("invalid vehicle inspection")
)
