package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alimurrofid/petualangan-cuan/internal/events"
)

// EventMessage is a domain event mirrored to the broker. It carries ids
// only; consumers fetch the entities they need from the backend.
type EventMessage struct {
	Event     events.Event `json:"event"`
	UserID    int64        `json:"user_id"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewEventMessage(e events.Event, userID int64) *EventMessage {
	return &EventMessage{
		Event:     e,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes a message and rejects unknown event kinds.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Event.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", msg.Event.Kind)
	}
	return &msg, nil
}
