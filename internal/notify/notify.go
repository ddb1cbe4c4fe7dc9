// Package notify delivers transactional email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ApprovalRequest asks the administrator to approve a new registration.
func ApprovalRequest(admin, name, email, link string) Message {
	return Message{
		To:      admin,
		Subject: "Yêu cầu duyệt tài khoản mới",
		Body: fmt.Sprintf(
			"Có tài khoản mới đăng ký:\n\nHọ tên: %s\nEmail: %s\n\nBấm vào liên kết sau để duyệt:\n%s\n",
			name, email, link,
		),
	}
}

// TemporaryPassword sends a freshly reset password to its owner.
func TemporaryPassword(to, password string) Message {
	return Message{
		To:      to,
		Subject: "Mật khẩu tạm thời",
		Body: fmt.Sprintf(
			"Mật khẩu tạm thời của bạn là: %s\n\nVui lòng đăng nhập và đổi mật khẩu ngay.\n",
			password,
		),
	}
}

// ErrNotDelivered is returned by LogSender outside development.
var ErrNotDelivered = errors.New("no mail transport configured")

// LogSender stands in for a mail transport when no SMTP server is configured.
// In development it logs the whole message at debug level; otherwise it
// fails every send.
type LogSender struct {
	logger      *slog.Logger
	development bool
}

func NewLogSender(logger *slog.Logger, development bool) *LogSender {
	return &LogSender{logger: logger, development: development}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if !s.development {
		s.logger.ErrorContext(ctx, "smtp not configured, email not delivered",
			"to", msg.To,
			"subject", msg.Subject,
		)
		return ErrNotDelivered
	}

	s.logger.DebugContext(ctx, "email (smtp not configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
