package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/notify"
)

const maxMailRetries = 5

// Enqueuer is the part of *asynq.Client the queue sender needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender hands messages to the worker instead of delivering them inline.
// A nil error means the message was queued, not that it was delivered.
type QueueSender struct {
	client Enqueuer
}

func NewQueueSender(client Enqueuer) *QueueSender {
	return &QueueSender{client: client}
}

func (s *QueueSender) Send(ctx context.Context, msg notify.Message) error {
	task, err := NewSendEmailTask(SendEmailPayload{Message: msg})
	if err != nil {
		return fmt.Errorf("building mail task: %w", err)
	}

	_, err = s.client.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(maxMailRetries),
		asynq.Queue("critical"),
	)
	if err != nil {
		return fmt.Errorf("enqueueing mail task: %w", err)
	}
	return nil
}

var _ notify.Sender = (*QueueSender)(nil)
