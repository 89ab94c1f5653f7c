package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventPostCreated   EventType = "post.created"
	EventReactionAdded EventType = "reaction.added"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// PostCreatedEvent carries the newly inserted post
type PostCreatedEvent struct {
	Post Post `json:"post"`
}

// ReactionAddedEvent carries one newly inserted reaction
type ReactionAddedEvent struct {
	MessageID string   `json:"message_id"`
	Reaction  Reaction `json:"reaction"`
	ReactedAt string   `json:"reacted_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
