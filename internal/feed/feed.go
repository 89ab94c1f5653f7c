package feed

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/fabriciofarewell/wall-service/internal/types"
)

// PageSize is the fixed number of posts fetched per page load.
const PageSize = 40

// Mode selects how a loaded page is merged into the visible set.
type Mode string

const (
	// ModeReplace makes the loaded page the entire visible set.
	ModeReplace Mode = "replace"
	// ModeAppend adds posts whose IDs are not already present, after the
	// existing entries. IDs already present are dropped silently, so
	// re-fetching an overlapping page is idempotent.
	ModeAppend Mode = "append"
)

// Sort selects the ordering of the visible set.
type Sort string

const (
	// SortNewest is creation-time descending, the natural load order.
	SortNewest Sort = "newest"
	// SortTop is total reaction count descending, ties broken by
	// creation-time descending.
	SortTop Sort = "top"
)

// ValidSort reports whether s is a known sort mode.
func ValidSort(s Sort) bool {
	return s == SortNewest || s == SortTop
}

// Source is the slice of the storage contract the feed store reads from.
type Source interface {
	ListPosts(ctx context.Context, limit, offset int) ([]types.Post, error)
	CountReactions(ctx context.Context, postIDs []string) (map[string]types.ReactionCount, error)
}

// PostView is a post together with its reaction tally.
type PostView struct {
	types.Post
	Reactions types.ReactionCount `json:"reactions"`
}

// Store maintains a locally consistent, deduplicated, paginated view of
// posts and their reaction tallies, kept in sync with both explicit page
// loads and asynchronous change-feed events. The external store remains
// the durable source of truth; the Store owns only the in-process view.
//
// Every operation commits its state change at the end, so page loads and
// push events may interleave arbitrarily and still converge: duplicate
// post deliveries are no-ops and overlapping pages deduplicate by ID.
type Store struct {
	src Source

	mu      sync.RWMutex
	posts   []types.Post
	counts  map[string]types.ReactionCount
	page    int
	hasMore bool
}

// New creates an empty feed store reading from src.
func New(src Source) *Store {
	return &Store{
		src:     src,
		counts:  make(map[string]types.ReactionCount),
		page:    -1,
		hasMore: true,
	}
}

// LoadPage fetches one page of posts and merges it into the visible set.
// A failed fetch leaves all prior state untouched; nothing is retried.
// After the posts are merged, the reaction tallies for the loaded IDs are
// bulk-fetched and merged in; tallies for other posts are untouched. A
// failure of the tally fetch is logged and skipped, the posts stay.
func (s *Store) LoadPage(ctx context.Context, page int, mode Mode) error {
	loaded, err := s.src.ListPosts(ctx, PageSize, page*PageSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	switch mode {
	case ModeReplace:
		s.posts = append([]types.Post(nil), loaded...)
	default:
		seen := make(map[string]bool, len(s.posts))
		for _, p := range s.posts {
			seen[p.ID] = true
		}
		for _, p := range loaded {
			if !seen[p.ID] {
				s.posts = append(s.posts, p)
				seen[p.ID] = true
			}
		}
	}
	s.page = page
	// Page-size heuristic: a full page is taken to mean more rows exist.
	// It misreports when the total count is an exact multiple of the page
	// size; the cost is one empty append.
	s.hasMore = len(loaded) == PageSize
	s.mu.Unlock()

	ids := make([]string, 0, len(loaded))
	for _, p := range loaded {
		ids = append(ids, p.ID)
	}

	counts, err := s.src.CountReactions(ctx, ids)
	if err != nil {
		slog.Warn("failed to fetch reaction counts", slog.String("error", err.Error()))
		return nil
	}

	s.mu.Lock()
	for id, c := range counts {
		s.counts[id] = c
	}
	s.mu.Unlock()

	return nil
}

// LoadMore fetches the page after the last successfully loaded one and
// appends it.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.RLock()
	next := s.page + 1
	s.mu.RUnlock()

	return s.LoadPage(ctx, next, ModeAppend)
}

// ApplyPostInserted merges a change-feed post insert into the visible set.
// A post whose ID is already visible is a no-op, so duplicate delivery and
// races with a page load that independently contains the row both converge.
// New posts are prepended, since the natural order is newest-first.
func (s *Store) ApplyPostInserted(p types.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.posts {
		if existing.ID == p.ID {
			return
		}
	}

	s.posts = append([]types.Post{p}, s.posts...)
	if _, ok := s.counts[p.ID]; !ok {
		s.counts[p.ID] = types.ZeroCounts()
	}
}

// ApplyReactionInserted merges a change-feed reaction insert, incrementing
// the tally in place. The target post may not be tracked yet; events can
// race ahead of the page load that will carry it.
func (s *Store) ApplyReactionInserted(messageID string, r types.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[messageID]; !ok {
		s.counts[messageID] = types.ZeroCounts()
	}
	s.counts[messageID][r]++
}

// Posts returns the visible set filtered by a case-insensitive substring
// match over name and message, in the requested order. The result is a
// copy; tallies are cloned.
func (s *Store) Posts(query string, sortMode Sort) []PostView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))

	views := make([]PostView, 0, len(s.posts))
	for _, p := range s.posts {
		if needle != "" {
			name := strings.ToLower(p.Name)
			message := strings.ToLower(p.Message)
			if !strings.Contains(name, needle) && !strings.Contains(message, needle) {
				continue
			}
		}

		counts, ok := s.counts[p.ID]
		if !ok {
			counts = types.ZeroCounts()
		}
		views = append(views, PostView{Post: p, Reactions: counts.Clone()})
	}

	if sortMode == SortTop {
		sort.SliceStable(views, func(i, j int) bool {
			ti, tj := views[i].Reactions.Total(), views[j].Reactions.Total()
			if ti != tj {
				return ti > tj
			}
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	}

	return views
}

// Counts returns a clone of the tally for one post, zeroed when untracked.
func (s *Store) Counts(messageID string) types.ReactionCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.counts[messageID]; ok {
		return c.Clone()
	}
	return types.ZeroCounts()
}

// Page returns the index of the last successfully loaded page, -1 before
// the first load.
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// HasMore reports whether the last page load looked like more rows exist.
func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// Len returns the number of visible posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
