// Package notify publishes and consumes ledger change events over AMQP so
// that other processes can reload their snapshot when the ledger is mutated.
package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity names the kind of record that changed.
type Entity string

// Entities that produce change events.
const (
	EntityCategory    Entity = "category"
	EntityTransaction Entity = "transaction"
	EntityBudget      Entity = "budget"
)

// Action describes what happened to the entity.
type Action string

// Actions carried by change events.
const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionImported Action = "imported"
)

// ChangeMessage is a lightweight notice that the ledger changed. It carries
// only identifiers; consumers reload the full snapshot themselves.
type ChangeMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Entity    Entity    `json:"entity"`
	Action    Action    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(entity Entity, action Action, id string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects ones without an entity
// or action.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Action == "" {
		return nil, fmt.Errorf("change message missing entity or action")
	}
	return &msg, nil
}

func (m *ChangeMessage) String() string {
	if m.ID == "" {
		return fmt.Sprintf("%s %s", m.Entity, m.Action)
	}
	return fmt.Sprintf("%s %s %s", m.Entity, m.ID, m.Action)
}
