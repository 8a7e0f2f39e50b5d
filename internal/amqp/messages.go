package amqp

import (
	"encoding/json"
	"time"
)

// Digest request reasons.
const (
	ReasonTransactionCreated = "transaction_created"
	ReasonTransactionDeleted = "transaction_deleted"
	ReasonScheduled          = "scheduled"
)

// DigestMessage asks the worker to rebuild the digest for a month.
// It carries only the month coordinates, the worker fetches the
// transactions from its own backend.
type DigestMessage struct {
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDigestMessage creates a digest request for the given month.
func NewDigestMessage(month, year int, reason string) *DigestMessage {
	return &DigestMessage{
		Month:     month,
		Year:      year,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DigestMessageFromJSON creates a message from JSON bytes
func DigestMessageFromJSON(data []byte) (*DigestMessage, error) {
	var msg DigestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
