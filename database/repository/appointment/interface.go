// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"wellbook/database"
	"wellbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAppointmentNotFound is returned when no appointment matches the given ID.
var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID, status string) ([]models.Appointment, error)
	ActiveSlots(ctx context.Context, professionalID, date string) ([]models.AppointmentSlot, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	EnsureIndexes() error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: database.Database().Collection("appointments"),
	}
}
