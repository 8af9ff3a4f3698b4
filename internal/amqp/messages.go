package amqp

import (
	"encoding/json"
	"time"
)

// InsightRefreshMessage asks the worker to regenerate insights for one
// business. It carries only the ID, the worker fetches everything else from
// the database.
type InsightRefreshMessage struct {
	BusinessID  string    `json:"business_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewInsightRefreshMessage(businessID string) *InsightRefreshMessage {
	return &InsightRefreshMessage{
		BusinessID:  businessID,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InsightRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InsightRefreshMessageFromJSON creates a message from JSON bytes
func InsightRefreshMessageFromJSON(data []byte) (*InsightRefreshMessage, error) {
	var msg InsightRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
