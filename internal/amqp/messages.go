package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names published by the FinJar backend when its data changes.
const (
	EventJarCreated     = "jar.created"
	EventJarUpdated     = "jar.updated"
	EventJarDeleted     = "jar.deleted"
	EventDepositCreated = "deposit.created"
	EventDepositDeleted = "deposit.deleted"
)

// JarEventMessage announces one jar or deposit change. It carries just
// enough to invalidate local state; consumers refetch from the API for the
// full records. Amount is only set on deposit events.
type JarEventMessage struct {
	Event     string    `json:"event"`
	JarID     string    `json:"jarId"`
	Amount    float64   `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewJarEventMessage creates an event message stamped with the current time.
func NewJarEventMessage(event, jarID string, amount float64) *JarEventMessage {
	return &JarEventMessage{
		Event:     event,
		JarID:     jarID,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// IsDepositEvent reports whether the message describes a deposit change,
// which carries an amount usable as an optimistic delta.
func (m *JarEventMessage) IsDepositEvent() bool {
	return m.Event == EventDepositCreated || m.Event == EventDepositDeleted
}

// ToJSON converts the message to JSON bytes.
func (m *JarEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// JarEventMessageFromJSON decodes a message, rejecting unknown event names.
func JarEventMessageFromJSON(data []byte) (*JarEventMessage, error) {
	var msg JarEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Event {
	case EventJarCreated, EventJarUpdated, EventJarDeleted, EventDepositCreated, EventDepositDeleted:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
}
