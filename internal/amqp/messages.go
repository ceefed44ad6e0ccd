package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trackboard/internal/core"
)

// NotificationMessage carries one notification from the services to the
// presenting worker.
type NotificationMessage struct {
	ID        string                 `json:"id"`
	Kind      core.NotificationKind  `json:"kind"`
	Level     core.NotificationLevel `json:"level"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Date      string                 `json:"date"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewNotificationMessage wraps n with a fresh message id.
func NewNotificationMessage(n core.Notification) *NotificationMessage {
	ts := n.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      n.Kind,
		Level:     n.Level,
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  n.Metadata,
		Timestamp: ts,
	}
	if !n.Date.IsEmpty() {
		msg.Date = n.Date.Key()
	}
	return msg
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Title == "" {
		return nil, fmt.Errorf("notification message %q has no title", msg.ID)
	}
	return &msg, nil
}

// Notification converts the message back to the domain type.
func (m *NotificationMessage) Notification() (core.Notification, error) {
	n := core.Notification{
		Kind:      m.Kind,
		Level:     m.Level,
		Title:     m.Title,
		Message:   m.Message,
		Metadata:  m.Metadata,
		CreatedAt: m.Timestamp,
	}
	if m.Date != "" {
		d, err := core.ParseDate(m.Date)
		if err != nil {
			return core.Notification{}, err
		}
		n.Date = d
	}
	return n, nil
}
