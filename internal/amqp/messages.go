package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that a stored collection changed. It carries only
// the storage key; consumers re-read the value themselves.
type ChangeMessage struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(key string, at time.Time) *ChangeMessage {
	if at.IsZero() {
		at = time.Now()
	}
	return &ChangeMessage{Key: key, Timestamp: at.UTC()}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
