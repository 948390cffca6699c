package models

import "time"

const (
	RolePatient      = "patient"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// ReminderPayload is the body of a queued reminder task.
type ReminderPayload struct {
	AccountID     string `json:"accountId"`
	AppointmentID string `json:"appointmentId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	FireDate      string `json:"fireDate"` // RFC3339
}

// DeviceToken is the push target registered by a mobile client.
type DeviceToken struct {
	AccountID string    `bson:"account_id" json:"account_id"`
	Role      string    `bson:"role" json:"role"`
	FCMToken  string    `bson:"fcm_token" json:"fcm_token" binding:"required"`
	Platform  string    `bson:"platform,omitempty" json:"platform,omitempty"` // "ios" | "android"
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
