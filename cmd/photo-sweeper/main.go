package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabriciofarewell/wall-service/internal/config"
	"github.com/fabriciofarewell/wall-service/internal/gateway"
	"github.com/fabriciofarewell/wall-service/internal/services/media"
	"github.com/fabriciofarewell/wall-service/internal/storage"
)

// PhotoSweeper removes bucket objects no post references. A photo is
// uploaded before its post row is inserted, so a failed insert strands the
// object; the grace period keeps in-flight uploads safe.
type PhotoSweeper struct {
	storage  storage.Storage
	media    *media.Service
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger
}

func NewPhotoSweeper(storage storage.Storage, mediaService *media.Service, interval, grace time.Duration) *PhotoSweeper {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &PhotoSweeper{
		storage:  storage,
		media:    mediaService,
		interval: interval,
		grace:    grace,
		logger:   logger,
	}
}

func (ps *PhotoSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ps.interval)
	defer ticker.Stop()

	ps.logger.Info("Photo sweeper started",
		"interval", ps.interval.String(),
		"grace_period", ps.grace.String())

	// Run once immediately on startup
	ps.sweepOrphanedPhotos(ctx)

	for {
		select {
		case <-ctx.Done():
			ps.logger.Info("Photo sweeper shutting down")
			return
		case <-ticker.C:
			ps.sweepOrphanedPhotos(ctx)
		}
	}
}

func (ps *PhotoSweeper) sweepOrphanedPhotos(ctx context.Context) {
	startTime := time.Now()

	ps.logger.Info("Starting orphaned photo sweep")

	referenced, err := ps.storage.ListPhotoPaths(ctx)
	if err != nil {
		ps.logger.Error("Failed to list referenced photo paths",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	keep := make(map[string]bool, len(referenced))
	for _, path := range referenced {
		keep[path] = true
	}

	objects, err := ps.media.List(ctx, "public/")
	if err != nil {
		ps.logger.Error("Failed to list bucket objects",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	removed := 0
	for _, obj := range objects {
		if keep[obj.Key] {
			continue
		}
		if time.Since(obj.LastModified) < ps.grace {
			continue
		}

		if err := ps.media.Remove(ctx, obj.Key); err != nil {
			ps.logger.Error("Failed to remove orphaned photo",
				"object_key", obj.Key,
				"error", err.Error())
			continue
		}
		removed++
	}

	duration := time.Since(startTime)

	ps.logger.Info("Completed orphaned photo sweep",
		"objects_checked", len(objects),
		"photos_removed", removed,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func main() {
	// Load config
	cfg := config.MustLoad()

	gw, err := gateway.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize backend gateway:", err)
	}
	slog.Info("Connected to backend")

	interval := time.Duration(cfg.Sweeper.IntervalMinutes) * time.Minute
	grace := time.Duration(cfg.Sweeper.GracePeriodHours) * time.Hour
	sweeper := NewPhotoSweeper(gw.Store, gw.Media, interval, grace)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the sweeper
	sweeper.Start(ctx)

	slog.Info("Photo sweeper stopped")
}
