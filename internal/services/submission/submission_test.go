package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/fabriciofarewell/wall-service/internal/services/media"
	"github.com/fabriciofarewell/wall-service/internal/types"
)

type fakeInserter struct {
	inserted  []types.NewPost
	insertErr error
}

func (f *fakeInserter) InsertPost(ctx context.Context, p types.NewPost) (types.Post, error) {
	if f.insertErr != nil {
		return types.Post{}, f.insertErr
	}
	f.inserted = append(f.inserted, p)
	return types.Post{
		ID:           fmt.Sprintf("post-%d", len(f.inserted)),
		Name:         p.Name,
		Message:      p.Message,
		Mood:         p.Mood,
		PhotoPath:    p.PhotoPath,
		PhotoURL:     p.PhotoURL,
		LanguageHint: p.LanguageHint,
		CreatedAt:    time.Now(),
	}, nil
}

// fakePhotoStore mirrors the media service's validation rules without a
// bucket behind it.
type fakePhotoStore struct {
	uploads []string
}

func (f *fakePhotoStore) Validate(contentType string, size int64) error {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return fmt.Errorf("%w: %s", media.ErrUnsupportedType, contentType)
	}
	if size > 4<<20 {
		return fmt.Errorf("%w: %d bytes", media.ErrTooLarge, size)
	}
	return nil
}

func (f *fakePhotoStore) ObjectKey(contentType string) string {
	return fmt.Sprintf("public/photo-%d.jpg", len(f.uploads))
}

func (f *fakePhotoStore) Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error) {
	f.uploads = append(f.uploads, objectKey)
	return "http://storage.local/farewell-photos/" + objectKey, nil
}

func newTestService() (*Service, *fakeInserter, *fakePhotoStore) {
	store := &fakeInserter{}
	photos := &fakePhotoStore{}
	svc := New(store, photos, nil, 20*time.Second)
	return svc, store, photos
}

func TestSubmit_EmptyContentRejected(t *testing.T) {
	svc, store, photos := newTestService()

	_, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana"})
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("Expected ErrEmptyContent, got %v", err)
	}
	if len(store.inserted) != 0 || len(photos.uploads) != 0 {
		t.Fatal("Expected no network calls for a rejected submission")
	}
}

func TestSubmit_BlankNameRejected(t *testing.T) {
	svc, store, _ := newTestService()

	for _, name := range []string{"", "   "} {
		_, err := svc.Submit(context.Background(), "session-1", Input{Name: name, Message: "hi"})
		if !errors.Is(err, ErrNameRequired) {
			t.Fatalf("Expected ErrNameRequired for name %q, got %v", name, err)
		}
	}
	if len(store.inserted) != 0 {
		t.Fatal("Expected no insert for a rejected submission")
	}
}

func TestSubmit_Cooldown(t *testing.T) {
	svc, _, _ := newTestService()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "adiós"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	now = now.Add(5 * time.Second)
	_, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "otra vez"})
	if !errors.Is(err, ErrCooldown) {
		t.Fatalf("Expected ErrCooldown within the window, got %v", err)
	}

	// Another session is not affected.
	if _, err := svc.Submit(context.Background(), "session-2", Input{Name: "Lucas", Message: "hola"}); err != nil {
		t.Fatalf("Expected other sessions to be unaffected, got %v", err)
	}

	now = now.Add(15 * time.Second)
	if _, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "ahora sí"}); err != nil {
		t.Fatalf("Expected the cooldown to have elapsed, got %v", err)
	}
}

func TestSubmit_FailedInsertDoesNotStartCooldown(t *testing.T) {
	svc, store, _ := newTestService()
	store.insertErr = errors.New("quota exceeded")

	if _, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "hi"}); err == nil {
		t.Fatal("Expected the insert error to propagate")
	}

	store.insertErr = nil
	if _, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "hi"}); err != nil {
		t.Fatalf("Expected an immediate retry to succeed, got %v", err)
	}
}

func TestSubmit_PhotoValidationBeforeUpload(t *testing.T) {
	svc, store, photos := newTestService()

	_, err := svc.Submit(context.Background(), "session-1", Input{
		Name:  "Ana",
		Photo: &Photo{Reader: bytes.NewReader(nil), Size: 1024, ContentType: "application/pdf"},
	})
	if !errors.Is(err, media.ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType, got %v", err)
	}

	_, err = svc.Submit(context.Background(), "session-1", Input{
		Name:  "Ana",
		Photo: &Photo{Reader: bytes.NewReader(nil), Size: 5 << 20, ContentType: "image/jpeg"},
	})
	if !errors.Is(err, media.ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}

	if len(photos.uploads) != 0 || len(store.inserted) != 0 {
		t.Fatal("Expected no upload or insert before validation passes")
	}
}

func TestSubmit_PhotoOnlyPost(t *testing.T) {
	svc, store, photos := newTestService()

	post, err := svc.Submit(context.Background(), "session-1", Input{
		Name:  "Ana",
		Photo: &Photo{Reader: bytes.NewReader([]byte("jpeg bytes")), Size: 10, ContentType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(photos.uploads) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(photos.uploads))
	}
	if post.PhotoURL == "" || post.PhotoPath == "" {
		t.Fatal("Expected the photo address on the created post")
	}
	if store.inserted[0].Message != "" {
		t.Fatalf("Expected an absent message, got %q", store.inserted[0].Message)
	}
}

func TestSubmit_TrimsAndTags(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Submit(context.Background(), "session-1", Input{
		Name:    "  Ana  ",
		Message: "  thanks for the good times  ",
		Mood:    types.MoodMemory,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := store.inserted[0]
	if got.Name != "Ana" {
		t.Fatalf("Expected trimmed name, got %q", got.Name)
	}
	if got.Message != "thanks for the good times" {
		t.Fatalf("Expected trimmed message, got %q", got.Message)
	}
	if got.Mood != types.MoodMemory {
		t.Fatalf("Expected mood to be stored, got %q", got.Mood)
	}
	if got.LanguageHint != "en" {
		t.Fatalf("Expected language hint en, got %q", got.LanguageHint)
	}
}

func TestSubmit_UnknownMoodRejected(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Submit(context.Background(), "session-1", Input{Name: "Ana", Message: "hi", Mood: "grumpy"})
	if !errors.Is(err, ErrInvalidMood) {
		t.Fatalf("Expected ErrInvalidMood, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Fatal("Expected no insert for an unknown mood")
	}
}

func TestDetectLanguageHint(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"", ""},
		{"hola", ""},
		{"gracias por todo, señor", "es"},
		{"¡Buena suerte!", "es"},
		{"thanks for the good times", "en"},
		{"we wish you the best", "en"},
		{"adiós and best wishes", "mix"},
		{"1234 !!", ""},
	}

	for _, tc := range cases {
		if got := DetectLanguageHint(tc.text); got != tc.want {
			t.Errorf("DetectLanguageHint(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
