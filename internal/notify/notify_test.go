package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalRequest(t *testing.T) {
	link := "https://desk.example.com/api/auth/approve?token=abc.def"
	msg := notify.ApprovalRequest("admin@example.com", "Nguyen Van A", "a@example.com", link)

	assert.Equal(t, "admin@example.com", msg.To)
	assert.NotEmpty(t, msg.Subject)
	assert.Contains(t, msg.Body, "Nguyen Van A")
	assert.Contains(t, msg.Body, "a@example.com")
	assert.Contains(t, msg.Body, link)
}

func TestTemporaryPassword(t *testing.T) {
	msg := notify.TemporaryPassword("guest@example.com", "Ab3dE6gH")

	assert.Equal(t, "guest@example.com", msg.To)
	assert.Contains(t, msg.Body, "Ab3dE6gH")
}

func TestLogSender_Production(t *testing.T) {
	var buf bytes.Buffer
	sender := notify.NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)), false)

	err := sender.Send(context.Background(), notify.TemporaryPassword("guest@example.com", "Secret99"))
	assert.ErrorIs(t, err, notify.ErrNotDelivered)

	assert.Contains(t, buf.String(), "guest@example.com")
	assert.NotContains(t, buf.String(), "Secret99")
}

func TestLogSender_DevelopmentLogsApprovalLink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := notify.NewLogSender(logger, true)

	link := "http://localhost:5000/api/auth/approve?token=abc"
	err := sender.Send(context.Background(), notify.ApprovalRequest("admin@example.com", "An", "an@example.com", link))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), link)
}

func TestNewSMTPSender(t *testing.T) {
	t.Run("builds client", func(t *testing.T) {
		sender, err := notify.NewSMTPSender(&config.SMTPConfig{
			Host:     "smtp.example.com",
			Port:     587,
			User:     "frontdesk@example.com",
			Password: "app-password",
			From:     "frontdesk@example.com",
		})
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("rejects empty host", func(t *testing.T) {
		_, err := notify.NewSMTPSender(&config.SMTPConfig{Port: 587})
		assert.Error(t, err)
	})
}
