package gateway

import (
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/fabriciofarewell/wall-service/internal/config"
	"github.com/fabriciofarewell/wall-service/internal/services/media"
	"github.com/fabriciofarewell/wall-service/internal/storage"
	"github.com/fabriciofarewell/wall-service/internal/storage/postgres"
)

// ErrNotConfigured indicates the backend endpoint or credentials are
// missing from the running configuration. Every consumer surfaces this
// identically and disables the affected action instead of crashing.
var ErrNotConfigured = errors.New("backend is not configured")

// Gateway bundles the handles to the external data platform: the database,
// the photo bucket and the optional change-feed transport. It is built once
// at startup and passed by reference to whichever component needs it; there
// is no lazy initialization, no reconnect-on-demand and no retrying. Any
// call failure on a handle surfaces to the caller as-is.
type Gateway struct {
	Store storage.Storage
	Media *media.Service

	// Redis is nil when the change feed is not configured; live updates
	// then only arrive through explicit page loads.
	Redis *redis.Client
}

// New builds the gateway from configuration. It returns ErrNotConfigured
// when the database or object-store credentials are absent.
func New(cfg *config.Config) (*Gateway, error) {
	if !cfg.PGSQL.Configured() || !cfg.MinIO.Configured() {
		return nil, ErrNotConfigured
	}

	store, err := postgres.NewPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	mediaService, err := media.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media service: %w", err)
	}

	gw := &Gateway{
		Store: store,
		Media: mediaService,
	}

	if cfg.Redis.Configured() {
		gw.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return gw, nil
}
