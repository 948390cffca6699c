package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wellbook/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendReminder = "reminder:send"
	reminderQueue    = "default"
)

// ReminderTaskID is the asynq task ID of an appointment's reminder.
func ReminderTaskID(appointmentID string) string {
	return "reminder:" + appointmentID
}

// NewReminderTask builds a reminder task due at fireAt. The task ID is tied
// to the appointment so a retried booking does not queue it twice.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}
	if payload.AppointmentID != "" {
		opts = append(opts, asynq.TaskID(ReminderTaskID(payload.AppointmentID)))
	}

	return task, opts, nil
}

// enqueuer is the part of *asynq.Client the scheduler needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// taskDeleter is the part of *asynq.Inspector used to drop queued reminders.
type taskDeleter interface {
	DeleteTask(queue, id string) error
}

// AsynqReminderScheduler queues reminders on the asynq Redis queue.
type AsynqReminderScheduler struct {
	client    enqueuer
	inspector taskDeleter
}

func NewAsynqReminderScheduler(client *asynq.Client, inspector *asynq.Inspector) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{client: client, inspector: inspector}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for %s: %w", payload.AppointmentID, err)
	}
	return nil
}

// CancelReminder removes the appointment's pending reminder. A reminder that
// was never queued or has already run is not an error.
func (s *AsynqReminderScheduler) CancelReminder(_ context.Context, appointmentID string) error {
	err := s.inspector.DeleteTask(reminderQueue, ReminderTaskID(appointmentID))
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("failed to cancel reminder for %s: %w", appointmentID, err)
}
