package booking

import (
	"context"
	"time"

	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/models"

	"go.uber.org/zap"
)

// AppointmentService books, lists and cancels appointments.
type AppointmentService interface {
	CheckConflict(ctx context.Context, req models.CheckSlotRequest) (*models.ConflictResult, error)
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, actor models.Actor) (*models.BookingResult, error)
	GetAppointment(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error)
	ListProfessionalDay(ctx context.Context, professionalID, date string) ([]models.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID, status string) ([]models.Appointment, error)
	CancelAppointment(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error)
}

// Notifier delivers a push message to an account's registered device.
type Notifier interface {
	NotifyAccount(ctx context.Context, accountID, title, body string, data map[string]string) error
}

// ReminderScheduler queues a reminder for delivery at fireAt and drops it
// again when the appointment is cancelled.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
	CancelReminder(ctx context.Context, appointmentID string) error
}

// DefaultAppointmentService implements AppointmentService. Cache, Payments,
// Notifier and Reminders are optional.
type DefaultAppointmentService struct {
	Repo      appointmentRepo.AppointmentRepository
	Cache     SlotCache
	Locker    BookingLocker
	Payments  DepositProcessor
	Notifier  Notifier
	Reminders ReminderScheduler
	Logger    *zap.Logger

	DepositAmountCents int64
	DepositCurrency    string
	ReminderLead       time.Duration
	Location           *time.Location
	Now                func() time.Time
}

func (s *DefaultAppointmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAppointmentService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *DefaultAppointmentService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
