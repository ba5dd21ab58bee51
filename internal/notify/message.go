// Package notify moves outbound notifications through a Redis list so the
// request that produced them never waits on delivery.
package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindAppointmentCreated Kind = "appointment_created"
	KindReminderDue        Kind = "reminder_due"
)

type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	AgentID   string    `json:"agent_id"`
	EntityID  string    `json:"entity_id"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Message) encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode notification: %w", err)
	}
	return string(b), nil
}

func decode(raw string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Message{}, fmt.Errorf("decode notification: %w", err)
	}
	return m, nil
}
