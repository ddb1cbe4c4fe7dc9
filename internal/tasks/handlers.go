package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/notify"
)

type Handler struct {
	sender notify.Sender
	logger *slog.Logger
}

func NewHandler(sender notify.Sender, logger *slog.Logger) *Handler {
	return &Handler{
		sender: sender,
		logger: logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSendEmail, h.HandleSendEmail)
}

func (h *Handler) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Message.To == "" {
		return fmt.Errorf("empty recipient: %w", asynq.SkipRetry)
	}

	if err := h.sender.Send(ctx, payload.Message); err != nil {
		h.logger.Error("email delivery failed",
			"to", payload.Message.To,
			"subject", payload.Message.Subject,
			"error", err,
		)
		return err
	}

	h.logger.Info("email delivered",
		"to", payload.Message.To,
		"subject", payload.Message.Subject,
	)
	return nil
}
