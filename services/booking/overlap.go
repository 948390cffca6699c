package booking

import (
	"strings"

	"wellbook/models"
)

// SlotMinutes converts an "HH:MM" wall-clock time into minutes since midnight.
// Each component is read from its leading numeric prefix; a missing or
// non-numeric component counts as 0, so malformed input never fails.
func SlotMinutes(appointmentTime string) int {
	parts := strings.Split(appointmentTime, ":")
	hours := leadingInt(parts[0])
	minutes := 0
	if len(parts) > 1 {
		minutes = leadingInt(parts[1])
	}
	return hours*60 + minutes
}

// leadingInt parses an optionally signed run of digits at the start of s,
// after any leading whitespace. Anything else yields 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// FirstOverlap returns the index of the first existing slot whose half-open
// interval intersects the candidate's. Touching endpoints do not overlap.
func FirstOverlap(candidate models.AppointmentSlot, existing []models.AppointmentSlot) (int, bool) {
	newStart := SlotMinutes(candidate.AppointmentTime)
	newEnd := newStart + candidate.DurationMinutes

	for i, slot := range existing {
		start := SlotMinutes(slot.AppointmentTime)
		end := start + slot.DurationMinutes
		if newStart < end && newEnd > start {
			return i, true
		}
	}
	return -1, false
}

// SlotsOverlap reports whether the candidate collides with any of the
// professional's existing slots for the same date. The caller is responsible
// for filtering existing by professional and date.
func SlotsOverlap(candidate models.AppointmentSlot, existing []models.AppointmentSlot) bool {
	_, ok := FirstOverlap(candidate, existing)
	return ok
}
