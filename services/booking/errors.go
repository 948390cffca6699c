package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSlotUnavailable    = errors.New("slot unavailable")
	ErrBookingInProgress  = errors.New("another booking for this professional and date is in progress")
	ErrForbidden          = errors.New("not allowed to access this appointment")
	ErrAlreadyCancelled   = errors.New("appointment already cancelled")
	ErrAppointmentStarted = errors.New("appointment has already started")
	ErrInvalidSlotTime    = errors.New("invalid appointment time")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ConflictError names the existing slot that blocked a booking. It matches
// ErrSlotUnavailable with errors.Is.
type ConflictError struct {
	Slot string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: overlaps appointment at %s", ErrSlotUnavailable, e.Slot)
}

func (e *ConflictError) Unwrap() error { return ErrSlotUnavailable }
