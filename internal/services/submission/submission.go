package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fabriciofarewell/wall-service/internal/realtime"
	"github.com/fabriciofarewell/wall-service/internal/types"
)

var (
	// ErrNameRequired is returned when the author name is blank after trimming.
	ErrNameRequired = errors.New("name is required")
	// ErrEmptyContent is returned when both the trimmed message and the photo are absent.
	ErrEmptyContent = errors.New("a message or a photo is required")
	// ErrCooldown is returned when the session submitted too recently.
	ErrCooldown = errors.New("please wait before sending another message")
	// ErrInvalidMood is returned for a mood outside the known set.
	ErrInvalidMood = errors.New("unknown mood")
)

// PhotoStore is the slice of the media service the submission flow uses.
type PhotoStore interface {
	Validate(contentType string, size int64) error
	ObjectKey(contentType string) string
	Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error)
}

// Inserter is the slice of the storage contract the submission flow uses.
type Inserter interface {
	InsertPost(ctx context.Context, p types.NewPost) (types.Post, error)
}

// Photo is a candidate photo upload.
type Photo struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Input is one candidate wall post.
type Input struct {
	Name    string
	Message string
	Mood    types.Mood
	Photo   *Photo
}

// Service validates and stores new wall posts. The anti-spam cooldown is
// tracked in memory per session and resets when the process restarts; it
// is a courtesy brake, not a durable guarantee.
type Service struct {
	store  Inserter
	photos PhotoStore
	feed   *realtime.Publisher

	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// New creates a submission service. feed may be nil when the change feed
// is not configured.
func New(store Inserter, photos PhotoStore, feed *realtime.Publisher, cooldown time.Duration) *Service {
	return &Service{
		store:    store,
		photos:   photos,
		feed:     feed,
		cooldown: cooldown,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// Submit validates in and stores it as a new post. All validation runs
// before any network call; a validation failure leaves no trace anywhere.
// The photo, when present, is uploaded first and its public address stored
// on the post. The cooldown clock only advances on success.
func (s *Service) Submit(ctx context.Context, sessionID string, in Input) (types.Post, error) {
	if err := s.checkCooldown(sessionID); err != nil {
		return types.Post{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return types.Post{}, ErrNameRequired
	}

	message := strings.TrimSpace(in.Message)
	if message == "" && in.Photo == nil {
		return types.Post{}, ErrEmptyContent
	}

	if in.Mood != "" && !in.Mood.Valid() {
		return types.Post{}, fmt.Errorf("%w: %s", ErrInvalidMood, in.Mood)
	}

	if in.Photo != nil {
		if err := s.photos.Validate(in.Photo.ContentType, in.Photo.Size); err != nil {
			return types.Post{}, err
		}
	}

	var photoPath, photoURL string
	if in.Photo != nil {
		photoPath = s.photos.ObjectKey(in.Photo.ContentType)
		url, err := s.photos.Upload(ctx, photoPath, in.Photo.Reader, in.Photo.Size, in.Photo.ContentType)
		if err != nil {
			return types.Post{}, fmt.Errorf("failed to upload photo: %w", err)
		}
		photoURL = url
	}

	post, err := s.store.InsertPost(ctx, types.NewPost{
		Name:         name,
		Message:      message,
		Mood:         in.Mood,
		PhotoPath:    photoPath,
		PhotoURL:     photoURL,
		LanguageHint: DetectLanguageHint(message),
	})
	if err != nil {
		return types.Post{}, err
	}

	s.markSent(sessionID)

	if err := s.feed.PostInserted(ctx, post); err != nil {
		slog.Warn("failed to publish post to change feed",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()))
	}

	return post, nil
}

func (s *Service) checkCooldown(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.lastSent[sessionID]
	if ok && s.now().Sub(last) < s.cooldown {
		return ErrCooldown
	}
	return nil
}

func (s *Service) markSent(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSent[sessionID] = s.now()
}
