package storage

import (
	"context"

	"github.com/fabriciofarewell/wall-service/internal/types"
)

type Storage interface {
	// ListPosts returns visible posts ordered by creation time descending.
	ListPosts(ctx context.Context, limit, offset int) ([]types.Post, error)
	// InsertPost stores a post and returns it with the assigned ID and
	// creation timestamp.
	InsertPost(ctx context.Context, p types.NewPost) (types.Post, error)
	// CountReactions tallies reactions for the given post IDs. Posts with
	// no reactions are absent from the result.
	CountReactions(ctx context.Context, postIDs []string) (map[string]types.ReactionCount, error)
	// InsertReaction stores one anonymous reaction for a post.
	InsertReaction(ctx context.Context, messageID string, r types.Reaction) (types.ReactionRow, error)
	// ListPhotoPaths returns every photo object path referenced by a post.
	ListPhotoPaths(ctx context.Context) ([]string, error)
}
