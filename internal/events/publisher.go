package events

import (
	"time"

	"github.com/fabriciofarewell/wall-service/internal/types"
)

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	Broadcast(event *types.Event)
}

// Publisher turns change-feed rows into WebSocket events for connected
// page sessions. Unlike the feed store, it fans out every row, local or
// not: each browser reconciles its own view.
type Publisher struct {
	hub WebSocketHub
}

// NewPublisher creates a new event publisher
func NewPublisher(hub WebSocketHub) *Publisher {
	return &Publisher{
		hub: hub,
	}
}

// OnPostInserted broadcasts a post.created event.
func (p *Publisher) OnPostInserted(post types.Post) {
	eventData := &types.PostCreatedEvent{Post: post}
	p.hub.Broadcast(types.NewEvent(types.EventPostCreated, eventData))
}

// OnReactionInserted broadcasts a reaction.added event.
func (p *Publisher) OnReactionInserted(row types.ReactionRow, local bool) {
	eventData := &types.ReactionAddedEvent{
		MessageID: row.MessageID,
		Reaction:  row.Reaction,
		ReactedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}
	p.hub.Broadcast(types.NewEvent(types.EventReactionAdded, eventData))
}
