package models

import "time"

const (
	AppointmentScheduled = "scheduled"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment is a booked session between a patient and a professional.
type Appointment struct {
	ID              string    `bson:"id" json:"id"`
	ProfessionalID  string    `bson:"professional_id" json:"professional_id"`
	PatientID       string    `bson:"patient_id" json:"patient_id"`
	ServiceName     string    `bson:"service_name,omitempty" json:"service_name,omitempty"`
	Date            string    `bson:"date" json:"date"`                         // "YYYY-MM-DD"
	AppointmentTime string    `bson:"appointment_time" json:"appointment_time"` // "HH:MM"
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	Status          string    `bson:"status" json:"status"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentIntentID string    `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// Slot projects the appointment onto its time extent.
func (a Appointment) Slot() AppointmentSlot {
	return AppointmentSlot{AppointmentTime: a.AppointmentTime, DurationMinutes: a.DurationMinutes}
}

// CreateAppointmentRequest is the payload of the booking-creation endpoint.
type CreateAppointmentRequest struct {
	ProfessionalID  string `json:"professional_id" binding:"required"`
	PatientID       string `json:"patient_id"` // required when booking on behalf of a patient
	ServiceName     string `json:"service_name"`
	Date            string `json:"date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

// Slot returns the candidate slot described by the request.
func (r CreateAppointmentRequest) Slot() AppointmentSlot {
	return AppointmentSlot{AppointmentTime: r.AppointmentTime, DurationMinutes: r.DurationMinutes}
}

// BookingResult is returned once an appointment has been persisted.
type BookingResult struct {
	Appointment         *Appointment `json:"appointment"`
	PaymentClientSecret string       `json:"payment_client_secret,omitempty"`
}
