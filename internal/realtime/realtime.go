// Package realtime carries row-insert notifications between wall instances
// over Redis pub/sub. It stands in for the hosted database's change feed:
// a writer publishes the inserted row, every subscriber applies it to its
// local view and fans it out to connected page sessions.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/fabriciofarewell/wall-service/internal/types"
)

const (
	// PostsChannel receives one frame per inserted post row.
	PostsChannel = "farewell.messages.insert"
	// ReactionsChannel receives one frame per inserted reaction row.
	ReactionsChannel = "farewell.reactions.insert"
)

// Frame is the wire envelope for one inserted row. Origin identifies the
// publishing process so a subscriber can tell its own echoes apart from
// rows written elsewhere.
type Frame struct {
	Origin   string             `json:"origin"`
	Post     *types.Post        `json:"post,omitempty"`
	Reaction *types.ReactionRow `json:"reaction,omitempty"`
}

// Handler receives inserted rows. local is true when the row was written
// by this process; the feed store handler uses it to avoid re-applying a
// reaction it already counted optimistically.
type Handler interface {
	OnPostInserted(p types.Post)
	OnReactionInserted(row types.ReactionRow, local bool)
}

// Publisher publishes inserted rows to the change feed. A nil Publisher is
// a no-op, so callers need no nil checks when the feed is unconfigured.
type Publisher struct {
	rdb    *redis.Client
	origin string
}

// NewPublisher creates a publisher stamping frames with the given origin,
// or nil when rdb is nil.
func NewPublisher(rdb *redis.Client, origin string) *Publisher {
	if rdb == nil {
		return nil
	}
	return &Publisher{rdb: rdb, origin: origin}
}

// PostInserted publishes a post-insert frame.
func (p *Publisher) PostInserted(ctx context.Context, post types.Post) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, PostsChannel, Frame{Origin: p.origin, Post: &post})
}

// ReactionInserted publishes a reaction-insert frame.
func (p *Publisher) ReactionInserted(ctx context.Context, row types.ReactionRow) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, ReactionsChannel, Frame{Origin: p.origin, Reaction: &row})
}

func (p *Publisher) publish(ctx context.Context, channel string, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal change-feed frame: %w", err)
	}

	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change-feed frame: %w", err)
	}

	return nil
}

// Subscriber dispatches change-feed frames to a set of handlers.
type Subscriber struct {
	rdb      *redis.Client
	origin   string
	handlers []Handler
}

// NewSubscriber creates a subscriber for the given handlers, or nil when
// rdb is nil.
func NewSubscriber(rdb *redis.Client, origin string, handlers ...Handler) *Subscriber {
	if rdb == nil {
		return nil
	}
	return &Subscriber{rdb: rdb, origin: origin, handlers: handlers}
}

// Run consumes the change feed until ctx is canceled. Malformed frames are
// logged and dropped; the loop keeps going.
func (s *Subscriber) Run(ctx context.Context) {
	if s == nil {
		return
	}

	pubsub := s.rdb.Subscribe(ctx, PostsChannel, ReactionsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.dispatch(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (s *Subscriber) dispatch(channel string, payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		slog.Warn("dropping malformed change-feed frame",
			slog.String("channel", channel),
			slog.String("error", err.Error()))
		return
	}

	switch channel {
	case PostsChannel:
		if frame.Post == nil {
			slog.Warn("dropping post frame without a post", slog.String("channel", channel))
			return
		}
		for _, h := range s.handlers {
			h.OnPostInserted(*frame.Post)
		}
	case ReactionsChannel:
		if frame.Reaction == nil {
			slog.Warn("dropping reaction frame without a reaction", slog.String("channel", channel))
			return
		}
		local := frame.Origin == s.origin
		for _, h := range s.handlers {
			h.OnReactionInserted(*frame.Reaction, local)
		}
	}
}

// FeedStore is the slice of the feed store the change feed writes to.
type FeedStore interface {
	ApplyPostInserted(p types.Post)
	ApplyReactionInserted(messageID string, r types.Reaction)
}

// FeedHandler applies change-feed rows to the feed store. Reaction frames
// from this process are skipped: the reaction flow already bumped the tally
// optimistically and re-applying the echo would double-count it. Post
// frames are always applied; submission does no optimistic insert.
type FeedHandler struct {
	store FeedStore
}

// NewFeedHandler wraps a feed store as a change-feed handler.
func NewFeedHandler(store FeedStore) *FeedHandler {
	return &FeedHandler{store: store}
}

func (h *FeedHandler) OnPostInserted(p types.Post) {
	h.store.ApplyPostInserted(p)
}

func (h *FeedHandler) OnReactionInserted(row types.ReactionRow, local bool) {
	if local {
		return
	}
	h.store.ApplyReactionInserted(row.MessageID, row.Reaction)
}

var _ Handler = (*FeedHandler)(nil)
