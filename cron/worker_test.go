package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/models"
	"wellbook/services/notification"
	"wellbook/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushCall struct {
	accountID, title string
	data             map[string]string
}

type stubNotifier struct {
	calls []pushCall
	err   error
}

func (s *stubNotifier) NotifyAccount(_ context.Context, accountID, title, _ string, data map[string]string) error {
	s.calls = append(s.calls, pushCall{accountID: accountID, title: title, data: data})
	return s.err
}

type stubAppointments map[string]*models.Appointment

func (s stubAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	if appt, ok := s[id]; ok {
		return appt, nil
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func reminderTask(t *testing.T, p models.ReminderPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeSendReminder, b)
}

func TestHandleReminderTask_Delivers(t *testing.T) {
	n := &stubNotifier{}
	task := reminderTask(t, models.ReminderPayload{AccountID: "pat-1", AppointmentID: "a1", Title: "Upcoming appointment"})

	require.NoError(t, HandleReminderTask(n, nil)(context.Background(), task))
	require.Len(t, n.calls, 1)
	assert.Equal(t, "pat-1", n.calls[0].accountID)
	assert.Equal(t, "a1", n.calls[0].data["appointmentId"])
	assert.Equal(t, "appointment_reminder", n.calls[0].data["type"])
}

func TestHandleReminderTask_BadPayloadSkipsRetry(t *testing.T) {
	n := &stubNotifier{}
	task := asynq.NewTask(tasks.TypeSendReminder, []byte("{not json"))

	err := HandleReminderTask(n, nil)(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, n.calls)
}

func TestHandleReminderTask_MissingAccountSkipsRetry(t *testing.T) {
	err := HandleReminderTask(&stubNotifier{}, nil)(context.Background(), reminderTask(t, models.ReminderPayload{AppointmentID: "a1"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderTask_PushFailureRetries(t *testing.T) {
	n := &stubNotifier{err: errors.New("fcm down")}
	err := HandleReminderTask(n, nil)(context.Background(), reminderTask(t, models.ReminderPayload{AccountID: "pat-1"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderTask_NoDeviceSkipsRetry(t *testing.T) {
	n := &stubNotifier{err: fmt.Errorf("NotifyAccount: pat-1: %w", notification.ErrNoDeviceToken)}
	err := HandleReminderTask(n, nil)(context.Background(), reminderTask(t, models.ReminderPayload{AccountID: "pat-1"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, notification.ErrNoDeviceToken)
}

func TestHandleReminderTask_ChecksAppointmentStatus(t *testing.T) {
	appts := stubAppointments{
		"live":      {ID: "live", Status: models.AppointmentScheduled},
		"cancelled": {ID: "cancelled", Status: models.AppointmentCancelled},
	}

	tests := []struct {
		appointmentID string
		wantPush      bool
	}{
		{"live", true},
		{"cancelled", false},
		{"deleted", false},
	}
	for _, tt := range tests {
		t.Run(tt.appointmentID, func(t *testing.T) {
			n := &stubNotifier{}
			task := reminderTask(t, models.ReminderPayload{AccountID: "pat-1", AppointmentID: tt.appointmentID, Title: "Upcoming appointment"})

			require.NoError(t, HandleReminderTask(n, appts)(context.Background(), task))
			assert.Equal(t, tt.wantPush, len(n.calls) == 1)
		})
	}
}
