package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fabriciofarewell/wall-service/internal/config"
	"github.com/fabriciofarewell/wall-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg := &Postgres{Db: db}
	if err := pg.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS farewell_messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(40) NOT NULL,
			message TEXT,
			mood VARCHAR(20) CHECK (mood IN ('funny', 'emotional', 'advice', 'memory', 'short')),
			photo_path VARCHAR(255),
			photo_url TEXT,
			language_hint VARCHAR(3),
			is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS farewell_reactions (
			id BIGSERIAL PRIMARY KEY,
			message_id UUID NOT NULL REFERENCES farewell_messages(id) ON DELETE CASCADE,
			reaction VARCHAR(10) NOT NULL CHECK (reaction IN ('heart', 'laugh', 'tears', 'star', 'clap')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_farewell_messages_created_at ON farewell_messages (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_farewell_reactions_message_id ON farewell_reactions (message_id);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) ListPosts(ctx context.Context, limit, offset int) ([]types.Post, error) {
	query := `
	SELECT id, name, COALESCE(message, ''), COALESCE(mood, ''),
	       COALESCE(photo_path, ''), COALESCE(photo_url, ''),
	       COALESCE(language_hint, ''), is_hidden, created_at
	FROM farewell_messages
	WHERE is_hidden = FALSE
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`

	rows, err := p.Db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		var post types.Post
		err := rows.Scan(&post.ID, &post.Name, &post.Message, &post.Mood,
			&post.PhotoPath, &post.PhotoURL, &post.LanguageHint, &post.IsHidden, &post.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (p *Postgres) InsertPost(ctx context.Context, np types.NewPost) (types.Post, error) {
	query := `
	INSERT INTO farewell_messages (name, message, mood, photo_path, photo_url, language_hint)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
	RETURNING id, created_at
	`

	post := types.Post{
		Name:         np.Name,
		Message:      np.Message,
		Mood:         np.Mood,
		PhotoPath:    np.PhotoPath,
		PhotoURL:     np.PhotoURL,
		LanguageHint: np.LanguageHint,
	}

	err := p.Db.QueryRowContext(ctx, query,
		np.Name, np.Message, string(np.Mood), np.PhotoPath, np.PhotoURL, np.LanguageHint).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return types.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

func (p *Postgres) CountReactions(ctx context.Context, postIDs []string) (map[string]types.ReactionCount, error) {
	counts := make(map[string]types.ReactionCount)
	if len(postIDs) == 0 {
		return counts, nil
	}

	query := `
	SELECT message_id, reaction, COUNT(*)
	FROM farewell_reactions
	WHERE message_id = ANY($1)
	GROUP BY message_id, reaction
	`

	rows, err := p.Db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID string
		var reaction types.Reaction
		var n int
		if err := rows.Scan(&messageID, &reaction, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reaction count: %w", err)
		}
		if _, ok := counts[messageID]; !ok {
			counts[messageID] = types.ZeroCounts()
		}
		counts[messageID][reaction] = n
	}

	return counts, rows.Err()
}

func (p *Postgres) InsertReaction(ctx context.Context, messageID string, r types.Reaction) (types.ReactionRow, error) {
	query := `
	INSERT INTO farewell_reactions (message_id, reaction)
	VALUES ($1, $2)
	RETURNING created_at
	`

	row := types.ReactionRow{MessageID: messageID, Reaction: r}
	err := p.Db.QueryRowContext(ctx, query, messageID, string(r)).Scan(&row.CreatedAt)
	if err != nil {
		return types.ReactionRow{}, fmt.Errorf("failed to insert reaction: %w", err)
	}

	return row, nil
}

func (p *Postgres) ListPhotoPaths(ctx context.Context) ([]string, error) {
	query := `
	SELECT photo_path FROM farewell_messages WHERE photo_path IS NOT NULL
	`

	rows, err := p.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan photo path: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, rows.Err()
}
