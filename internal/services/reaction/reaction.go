package reaction

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fabriciofarewell/wall-service/internal/feed"
	"github.com/fabriciofarewell/wall-service/internal/realtime"
	"github.com/fabriciofarewell/wall-service/internal/types"
)

// ErrUnknownReaction is returned for a reaction kind outside the known set.
var ErrUnknownReaction = errors.New("unknown reaction")

// Inserter is the slice of the storage contract the reaction flow uses.
type Inserter interface {
	InsertReaction(ctx context.Context, messageID string, r types.Reaction) (types.ReactionRow, error)
}

// Service records emoji reactions. Reactions are intentionally
// fire-and-forget: the local tally is bumped before the write is attempted
// and is never rolled back, so a failed write transiently overcounts until
// the next page load replaces the tally from the store. There is no
// deduplication and no check that the target post exists.
type Service struct {
	store Inserter
	feed  *feed.Store
	rt    *realtime.Publisher

	// wg tracks in-flight writes so tests can wait for them.
	wg sync.WaitGroup
}

// New creates a reaction service. rt may be nil when the change feed is
// not configured.
func New(store Inserter, feedStore *feed.Store, rt *realtime.Publisher) *Service {
	return &Service{
		store: store,
		feed:  feedStore,
		rt:    rt,
	}
}

// Add bumps the local tally for the post immediately and returns it, then
// writes the reaction row in the background. The write deliberately runs
// on a fresh context: the original flow has no cancellation for in-flight
// requests, and a caller navigating away must not abort the insert.
func (s *Service) Add(postID string, r types.Reaction) (types.ReactionCount, error) {
	if !r.Valid() {
		return nil, ErrUnknownReaction
	}

	s.feed.ApplyReactionInserted(postID, r)
	counts := s.feed.Counts(postID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := context.Background()
		row, err := s.store.InsertReaction(ctx, postID, r)
		if err != nil {
			// The optimistic bump stays; the store reconciles on the
			// next bulk count fetch.
			slog.Error("failed to store reaction",
				slog.String("post_id", postID),
				slog.String("reaction", string(r)),
				slog.String("error", err.Error()))
			return
		}

		if err := s.rt.ReactionInserted(ctx, row); err != nil {
			slog.Warn("failed to publish reaction to change feed",
				slog.String("post_id", postID),
				slog.String("error", err.Error()))
		}
	}()

	return counts, nil
}

// Wait blocks until all in-flight reaction writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
