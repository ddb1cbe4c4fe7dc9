package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewHandler tests handler initialization
func TestNewHandler(t *testing.T) {
	handler := NewHandler(&testutil.RecordingSender{}, testutil.DiscardLogger())

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.sender)
	assert.NotNil(t, handler.logger)
}

func TestHandleSendEmail(t *testing.T) {
	msg := notify.TemporaryPassword("guest@example.com", "Ab12Cd34")

	t.Run("delivers the message", func(t *testing.T) {
		sender := &testutil.RecordingSender{}
		handler := NewHandler(sender, testutil.DiscardLogger())

		task, err := NewSendEmailTask(SendEmailPayload{Message: msg})
		require.NoError(t, err)

		require.NoError(t, handler.HandleSendEmail(context.Background(), task))
		assert.Equal(t, []notify.Message{msg}, sender.Messages())
	})

	t.Run("invalid payload is not retried", func(t *testing.T) {
		handler := NewHandler(&testutil.RecordingSender{}, testutil.DiscardLogger())

		err := handler.HandleSendEmail(context.Background(), asynq.NewTask(TypeSendEmail, []byte("invalid json")))
		assert.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Contains(t, err.Error(), "unmarshal payload")
	})

	t.Run("missing recipient is not retried", func(t *testing.T) {
		handler := NewHandler(&testutil.RecordingSender{}, testutil.DiscardLogger())

		task, err := NewSendEmailTask(SendEmailPayload{Message: notify.Message{Subject: "x"}})
		require.NoError(t, err)

		assert.ErrorIs(t, handler.HandleSendEmail(context.Background(), task), asynq.SkipRetry)
	})

	t.Run("delivery failure is retried", func(t *testing.T) {
		sender := &testutil.RecordingSender{Err: errors.New("smtp down")}
		handler := NewHandler(sender, testutil.DiscardLogger())

		task, err := NewSendEmailTask(SendEmailPayload{Message: msg})
		require.NoError(t, err)

		err = handler.HandleSendEmail(context.Background(), task)
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestQueueSender(t *testing.T) {
	msg := notify.ApprovalRequest("admin@example.com", "An", "an@example.com", "http://desk.test/api/auth/approve?token=t")

	t.Run("enqueues a mail task", func(t *testing.T) {
		enq := &fakeEnqueuer{}
		require.NoError(t, NewQueueSender(enq).Send(context.Background(), msg))

		require.Len(t, enq.tasks, 1)
		assert.Equal(t, TypeSendEmail, enq.tasks[0].Type())

		var payload SendEmailPayload
		require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
		assert.Equal(t, msg, payload.Message)
	})

	t.Run("enqueue failure is reported", func(t *testing.T) {
		enq := &fakeEnqueuer{err: errors.New("redis unavailable")}
		err := NewQueueSender(enq).Send(context.Background(), msg)
		assert.Error(t, err)
	})
}
