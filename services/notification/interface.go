package notification

import (
	"context"
	"errors"
	"fmt"

	deviceRepo "petcare/database/repository/device"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService pushes booking updates to a subject's registered device.
type NotificationService interface {
	Notify(ctx context.Context, subjectRef, title, body string, data map[string]string) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	devices deviceRepo.DeviceRepository
	sender  Sender
	logger  *zap.Logger
}

func NewDefaultNotificationService(devices deviceRepo.DeviceRepository, sender Sender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if devices == nil || sender == nil {
		return nil, fmt.Errorf("notification service initialization error: device repo or sender is nil")
	}
	return &DefaultNotificationService{devices: devices, sender: sender, logger: logger}, nil
}

// Notify looks up the subject's latest FCM token and sends a push.
// A subject without a device is not an error.
func (s *DefaultNotificationService) Notify(ctx context.Context, subjectRef, title, body string, data map[string]string) error {
	device, err := s.devices.LatestForSubject(ctx, subjectRef)
	if errors.Is(err, deviceRepo.ErrNoDevice) {
		s.logger.Debug("notify: no device registered", zap.String("subjectRef", subjectRef))
		return nil
	}
	if err != nil {
		return fmt.Errorf("Notify: could not find device for %s: %w", subjectRef, err)
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["subjectRef"] = subjectRef

	msg := &messaging.Message{
		Token: device.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("Notify: failed to send FCM message: %w", err)
	}
	s.logger.Info("notify: push sent", zap.String("subjectRef", subjectRef), zap.String("messageId", id))
	return nil
}
