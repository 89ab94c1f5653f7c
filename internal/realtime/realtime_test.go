package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/fabriciofarewell/wall-service/internal/types"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		t.Fatalf("Failed to connect to test Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

// recordingHandler captures dispatched rows.
type recordingHandler struct {
	mu        sync.Mutex
	posts     []types.Post
	reactions []types.ReactionRow
	locals    []bool
	received  chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{received: make(chan struct{}, 16)}
}

func (h *recordingHandler) OnPostInserted(p types.Post) {
	h.mu.Lock()
	h.posts = append(h.posts, p)
	h.mu.Unlock()
	h.received <- struct{}{}
}

func (h *recordingHandler) OnReactionInserted(row types.ReactionRow, local bool) {
	h.mu.Lock()
	h.reactions = append(h.reactions, row)
	h.locals = append(h.locals, local)
	h.mu.Unlock()
	h.received <- struct{}{}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := newRecordingHandler()
	sub := NewSubscriber(client, "reader", handler)
	go sub.Run(ctx)

	pub := NewPublisher(client, "writer")
	post := types.Post{ID: "p1", Name: "Ana", Message: "hasta pronto", CreatedAt: time.Now().UTC()}

	// The subscription races the first publish; keep publishing until the
	// frame lands.
	deadline := time.After(2 * time.Second)
	for {
		if err := pub.PostInserted(ctx, post); err != nil {
			t.Fatalf("Unexpected publish error: %v", err)
		}

		select {
		case <-handler.received:
		case <-deadline:
			t.Fatal("Timed out waiting for the post frame")
		case <-time.After(10 * time.Millisecond):
			continue
		}
		break
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.posts) == 0 {
		t.Fatal("Expected at least one delivered post")
	}
	if handler.posts[0].ID != "p1" || handler.posts[0].Name != "Ana" {
		t.Fatalf("Expected the published post back, got %+v", handler.posts[0])
	}
}

func TestDispatch_ReactionOriginFlag(t *testing.T) {
	handler := newRecordingHandler()
	sub := &Subscriber{origin: "self", handlers: []Handler{handler}}

	own, _ := json.Marshal(Frame{
		Origin:   "self",
		Reaction: &types.ReactionRow{MessageID: "p1", Reaction: types.ReactionHeart},
	})
	foreign, _ := json.Marshal(Frame{
		Origin:   "elsewhere",
		Reaction: &types.ReactionRow{MessageID: "p1", Reaction: types.ReactionClap},
	})

	sub.dispatch(ReactionsChannel, own)
	sub.dispatch(ReactionsChannel, foreign)

	if len(handler.locals) != 2 {
		t.Fatalf("Expected 2 dispatched reactions, got %d", len(handler.locals))
	}
	if !handler.locals[0] || handler.locals[1] {
		t.Fatalf("Expected local=[true false], got %v", handler.locals)
	}
}

func TestDispatch_MalformedFrameDropped(t *testing.T) {
	handler := newRecordingHandler()
	sub := &Subscriber{origin: "self", handlers: []Handler{handler}}

	sub.dispatch(PostsChannel, []byte("{not json"))
	sub.dispatch(PostsChannel, []byte(`{"origin":"x"}`))
	sub.dispatch(ReactionsChannel, []byte(`{"origin":"x"}`))

	if len(handler.posts) != 0 || len(handler.reactions) != 0 {
		t.Fatal("Expected malformed frames to be dropped")
	}
}

// storeRecorder fakes the feed store behind the FeedHandler.
type storeRecorder struct {
	posts     []types.Post
	reactions []types.Reaction
}

func (s *storeRecorder) ApplyPostInserted(p types.Post) { s.posts = append(s.posts, p) }
func (s *storeRecorder) ApplyReactionInserted(messageID string, r types.Reaction) {
	s.reactions = append(s.reactions, r)
}

func TestFeedHandler_SkipsLocalReactions(t *testing.T) {
	store := &storeRecorder{}
	h := NewFeedHandler(store)

	row := types.ReactionRow{MessageID: "p1", Reaction: types.ReactionHeart}

	// The local echo was already counted optimistically by the reaction
	// flow; re-applying it would double-count.
	h.OnReactionInserted(row, true)
	if len(store.reactions) != 0 {
		t.Fatal("Expected the local echo to be skipped")
	}

	h.OnReactionInserted(row, false)
	if len(store.reactions) != 1 {
		t.Fatalf("Expected the foreign reaction to be applied, got %d", len(store.reactions))
	}

	// Post frames are always applied: submission does no optimistic insert.
	h.OnPostInserted(types.Post{ID: "p2"})
	if len(store.posts) != 1 {
		t.Fatal("Expected the post frame to be applied")
	}
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var pub *Publisher

	if err := pub.PostInserted(context.Background(), types.Post{ID: "p1"}); err != nil {
		t.Fatalf("Expected nil publisher to be a no-op, got %v", err)
	}
	if err := pub.ReactionInserted(context.Background(), types.ReactionRow{}); err != nil {
		t.Fatalf("Expected nil publisher to be a no-op, got %v", err)
	}
}
