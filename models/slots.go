package models

// AppointmentSlot is the time extent of one appointment on a single day.
// It has no date or timezone; slots are only comparable when they are known
// to belong to the same professional and calendar date.
type AppointmentSlot struct {
	AppointmentTime string `bson:"appointment_time" json:"appointment_time"` // "HH:MM", 24-hour
	DurationMinutes int    `bson:"duration_minutes" json:"duration_minutes"`
}

// CheckSlotRequest asks whether a candidate slot collides with a professional's day.
type CheckSlotRequest struct {
	ProfessionalID  string `json:"professional_id" binding:"required"`
	Date            string `json:"date" binding:"required"` // YYYY-MM-DD
	AppointmentTime string `json:"appointment_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Slot returns the candidate slot described by the request.
func (r CheckSlotRequest) Slot() AppointmentSlot {
	return AppointmentSlot{AppointmentTime: r.AppointmentTime, DurationMinutes: r.DurationMinutes}
}

// ConflictResult is returned by the advisory conflict check.
type ConflictResult struct {
	Conflict        bool             `json:"conflict"`
	ConflictingSlot *AppointmentSlot `json:"conflicting_slot,omitempty"`
}
