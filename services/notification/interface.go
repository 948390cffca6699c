package notification

import (
	"context"
	"errors"
	"fmt"

	deviceRepo "wellbook/database/repository/device"
	"wellbook/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoDeviceToken is returned when the account has not registered a device.
var ErrNoDeviceToken = errors.New("account has no registered FCM token")

// NotificationService sends FCM pushes to registered accounts.
type NotificationService interface {
	NotifyAccount(ctx context.Context, accountID, title, body string, data map[string]string) error
	RegisterDevice(ctx context.Context, accountID, role, fcmToken, platform string) error
}

// pushSender is the slice of *messaging.Client the service uses.
type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation. A nil sender
// makes NotifyAccount a no-op, which is how push is disabled.
type DefaultNotificationService struct {
	devices deviceRepo.DeviceRepository
	sender  pushSender
	logger  *zap.Logger
}

func NewDefaultNotificationService(devices deviceRepo.DeviceRepository, client *messaging.Client, logger *zap.Logger) (*DefaultNotificationService, error) {
	if devices == nil {
		return nil, fmt.Errorf("notification service initialization error: device repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DefaultNotificationService{devices: devices, logger: logger}
	if client != nil {
		svc.sender = client
	}
	return svc, nil
}

// NotifyAccount looks up the account's FCM token and sends a push.
func (s *DefaultNotificationService) NotifyAccount(ctx context.Context, accountID, title, body string, data map[string]string) error {
	if s.sender == nil {
		s.logger.Debug("Push disabled, dropping notification", zap.String("account", accountID), zap.String("title", title))
		return nil
	}

	device, err := s.devices.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, deviceRepo.ErrDeviceNotFound) {
			return fmt.Errorf("NotifyAccount: %s: %w", accountID, ErrNoDeviceToken)
		}
		return fmt.Errorf("NotifyAccount: could not load device for %s: %w", accountID, err)
	}
	if device.FCMToken == "" {
		return fmt.Errorf("NotifyAccount: %s: %w", accountID, ErrNoDeviceToken)
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["role"]; !ok && device.Role != "" {
		payload["role"] = device.Role
	}

	id, err := s.sender.Send(ctx, buildMessage(device.FCMToken, title, body, payload))
	if err != nil {
		return fmt.Errorf("NotifyAccount: failed to send FCM message: %w", err)
	}
	s.logger.Debug("Push sent", zap.String("account", accountID), zap.String("messageId", id))
	return nil
}

func (s *DefaultNotificationService) RegisterDevice(ctx context.Context, accountID, role, fcmToken, platform string) error {
	return s.devices.Upsert(ctx, models.DeviceToken{
		AccountID: accountID,
		Role:      role,
		FCMToken:  fcmToken,
		Platform:  platform,
	})
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}
