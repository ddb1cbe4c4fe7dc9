package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/notify"
)

// Task type names
const (
	TypeSendEmail = "mail:send"
)

// SendEmailPayload contains the message a worker should deliver
type SendEmailPayload struct {
	Message notify.Message `json:"message"`
}

func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendEmail, data), nil
}
