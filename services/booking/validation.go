package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wellbook/models"
)

const (
	minutesPerDay      = 24 * 60
	maxDurationMinutes = 12 * 60
)

// ValidateSlotTime accepts "HH:MM" or "HH:MM:SS" with an hour in 0-23 and a
// minute in 0-59. SlotMinutes stays lenient; this check runs before it.
func ValidateSlotTime(s string) error {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("%w: %q: expected HH:MM", ErrInvalidSlotTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("%w: %q: invalid hour", ErrInvalidSlotTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return fmt.Errorf("%w: %q: invalid minute", ErrInvalidSlotTime, s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return fmt.Errorf("%w: %q: invalid second", ErrInvalidSlotTime, s)
		}
	}
	return nil
}

// validateDate checks the "YYYY-MM-DD" calendar date used to scope slots.
func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return newValidationError("date", "must be formatted YYYY-MM-DD")
	}
	return nil
}

// validateCandidate checks the time extent of a slot about to be booked.
// The appointment must end by midnight so it stays within one day.
func validateCandidate(slot models.AppointmentSlot) error {
	if err := ValidateSlotTime(slot.AppointmentTime); err != nil {
		return newValidationError("appointment_time", err.Error())
	}
	if slot.DurationMinutes <= 0 || slot.DurationMinutes > maxDurationMinutes {
		return newValidationError("duration_minutes", fmt.Sprintf("must be between 1 and %d", maxDurationMinutes))
	}
	if SlotMinutes(slot.AppointmentTime)+slot.DurationMinutes > minutesPerDay {
		return newValidationError("duration_minutes", "appointment must end by midnight")
	}
	return nil
}

// ValidateAppointmentRequest rejects booking requests the service cannot store.
func ValidateAppointmentRequest(req models.CreateAppointmentRequest) error {
	if strings.TrimSpace(req.ProfessionalID) == "" {
		return newValidationError("professional_id", "is required")
	}
	if err := validateDate(req.Date); err != nil {
		return err
	}
	return validateCandidate(req.Slot())
}

// ValidateCheckRequest rejects malformed advisory checks. A zero duration is
// allowed here so clients can test a single instant.
func ValidateCheckRequest(req models.CheckSlotRequest) error {
	if strings.TrimSpace(req.ProfessionalID) == "" {
		return newValidationError("professional_id", "is required")
	}
	if err := validateDate(req.Date); err != nil {
		return err
	}
	if err := ValidateSlotTime(req.AppointmentTime); err != nil {
		return newValidationError("appointment_time", err.Error())
	}
	if req.DurationMinutes < 0 {
		return newValidationError("duration_minutes", "must not be negative")
	}
	return nil
}
