package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wellbook/config"
	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/models"
	"wellbook/services/notification"
	"wellbook/services/tasks"
	"wellbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Notifier is the push capability the reminder worker depends on.
type Notifier interface {
	NotifyAccount(ctx context.Context, accountID, title, body string, data map[string]string) error
}

// AppointmentLookup resolves the appointment a reminder belongs to.
type AppointmentLookup interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
}

// InitReminderWorker runs the asynq worker in the background and returns the
// server so the caller can shut it down.
func InitReminderWorker(notifier Notifier, appts AppointmentLookup) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		ReminderRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(notifier, appts))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Max retry attempts reached, reminders disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// ReminderRedisOpt is the asynq connection for the reminder queue DB.
func ReminderRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// HandleReminderTask delivers a due reminder as a push. Reminders for
// appointments that are no longer scheduled are dropped. Undecodable payloads
// and accounts without a device are not retried.
func HandleReminderTask(notifier Notifier, appts AppointmentLookup) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.AccountID == "" {
			logger.Warn("Reminder without target account", zap.String("appointment", p.AppointmentID))
			return fmt.Errorf("reminder %s has no account: %w", p.AppointmentID, asynq.SkipRetry)
		}

		if appts != nil && p.AppointmentID != "" {
			appt, err := appts.GetByID(ctx, p.AppointmentID)
			switch {
			case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
				logger.Info("Dropping reminder for unknown appointment", zap.String("appointment", p.AppointmentID))
				return nil
			case err != nil:
				return fmt.Errorf("load appointment %s: %w", p.AppointmentID, err)
			case appt.Status != models.AppointmentScheduled:
				logger.Info("Dropping reminder",
					zap.String("appointment", p.AppointmentID), zap.String("status", appt.Status))
				return nil
			}
		}

		logger.Info("Triggering reminder",
			zap.String("account", p.AccountID),
			zap.String("appointment", p.AppointmentID),
			zap.String("title", p.Title))

		data := map[string]string{
			"type":          "appointment_reminder",
			"appointmentId": p.AppointmentID,
			"fireDate":      p.FireDate,
		}
		if err := notifier.NotifyAccount(ctx, p.AccountID, p.Title, p.Body, data); err != nil {
			logger.Warn("Failed to send reminder", zap.String("appointment", p.AppointmentID), zap.Error(err))
			if errors.Is(err, notification.ErrNoDeviceToken) {
				return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
			}
			return err
		}
		return nil
	}
}
