package media

import (
	"errors"
	"strings"
	"testing"

	"github.com/fabriciofarewell/wall-service/internal/config"
)

func newTestService() *Service {
	return &Service{
		bucketName: "farewell-photos",
		config: &config.Media{
			MaxFileSize:      4 << 20,
			AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
		},
	}
}

func TestValidate(t *testing.T) {
	svc := newTestService()

	if err := svc.Validate("image/jpeg", 1<<20); err != nil {
		t.Fatalf("Expected a 1 MB JPEG to pass, got %v", err)
	}
	if err := svc.Validate("image/webp", 4<<20); err != nil {
		t.Fatalf("Expected a photo at exactly the cap to pass, got %v", err)
	}

	if err := svc.Validate("application/pdf", 1024); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType for a PDF, got %v", err)
	}
	if err := svc.Validate("image/gif", 1024); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType for a GIF, got %v", err)
	}
	if err := svc.Validate("image/jpeg", 5<<20); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge for a 5 MB JPEG, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	svc := newTestService()

	cases := map[string]string{
		"image/jpeg":               ".jpg",
		"image/png":                ".png",
		"image/webp":               ".webp",
		"application/octet-stream": ".jpg",
	}

	for contentType, wantExt := range cases {
		key := svc.ObjectKey(contentType)
		if !strings.HasPrefix(key, "public/") {
			t.Fatalf("Expected key under public/, got %q", key)
		}
		if !strings.HasSuffix(key, wantExt) {
			t.Fatalf("Expected extension %s for %s, got %q", wantExt, contentType, key)
		}
	}

	if svc.ObjectKey("image/jpeg") == svc.ObjectKey("image/jpeg") {
		t.Fatal("Expected object keys to be unique per call")
	}
}
