package notification

import (
	"context"
	"errors"
	"testing"

	deviceRepo "petcare/database/repository/device"
	"petcare/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockDeviceRepo struct {
	device *models.Device
	err    error
}

func (m *mockDeviceRepo) LatestForSubject(ctx context.Context, subjectRef string) (*models.Device, error) {
	return m.device, m.err
}

type mockSender struct {
	sent []*messaging.Message
	err  error
}

func (m *mockSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, message)
	return "msg-1", nil
}

func TestNotify_SendsToLatestDevice(t *testing.T) {
	sender := &mockSender{}
	svc, err := NewDefaultNotificationService(&mockDeviceRepo{device: &models.Device{SubjectRef: "pet-1", FCMToken: "tok"}}, sender, zap.NewNop())
	require.NoError(t, err)

	data := map[string]string{"bookingId": "b1"}
	require.NoError(t, svc.Notify(context.Background(), "pet-1", "Booking confirmed", "See you soon", data))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "tok", sender.sent[0].Token)
	assert.Equal(t, "b1", sender.sent[0].Data["bookingId"])
	assert.Equal(t, "pet-1", sender.sent[0].Data["subjectRef"])
	assert.NotContains(t, data, "subjectRef", "caller map must not be mutated")
}

func TestNotify_NoDeviceIsSilent(t *testing.T) {
	sender := &mockSender{}
	svc, err := NewDefaultNotificationService(&mockDeviceRepo{err: deviceRepo.ErrNoDevice}, sender, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, svc.Notify(context.Background(), "pet-1", "t", "b", nil))
	assert.Empty(t, sender.sent)
}

func TestNotify_SendFailure(t *testing.T) {
	svc, err := NewDefaultNotificationService(&mockDeviceRepo{device: &models.Device{FCMToken: "tok"}}, &mockSender{err: errors.New("unregistered")}, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, svc.Notify(context.Background(), "pet-1", "t", "b", nil))
}

func TestNewDefaultNotificationService_RequiresDeps(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, &mockSender{}, zap.NewNop())
	assert.Error(t, err)
}
