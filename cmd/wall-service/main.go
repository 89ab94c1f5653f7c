package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/fabriciofarewell/wall-service/internal/config"
	"github.com/fabriciofarewell/wall-service/internal/events"
	"github.com/fabriciofarewell/wall-service/internal/feed"
	"github.com/fabriciofarewell/wall-service/internal/gateway"
	"github.com/fabriciofarewell/wall-service/internal/http/handlers/wall"
	"github.com/fabriciofarewell/wall-service/internal/http/handlers/ws"
	"github.com/fabriciofarewell/wall-service/internal/http/middleware"
	"github.com/fabriciofarewell/wall-service/internal/realtime"
	"github.com/fabriciofarewell/wall-service/internal/services/reaction"
	"github.com/fabriciofarewell/wall-service/internal/services/submission"
	wsHub "github.com/fabriciofarewell/wall-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := http.NewServeMux()
	router.HandleFunc("GET /", wall.SiteInfo(cfg))

	gw, err := gateway.New(cfg)
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		// Degraded mode: serve the friendly envelope instead of crashing.
		slog.Warn("Backend is not configured; wall actions are disabled")
		unconfigured := wall.Unconfigured()
		router.HandleFunc("GET /feed", unconfigured)
		router.HandleFunc("POST /feed/more", unconfigured)
		router.HandleFunc("POST /messages", unconfigured)
		router.HandleFunc("POST /messages/{id}/reactions", unconfigured)
		router.HandleFunc("GET /ws", unconfigured)
	case err != nil:
		log.Fatal("Failed to initialize backend gateway:", err)
	default:
		slog.Info("Connected to backend")

		hub := wsHub.NewHub()
		go hub.Run()

		store := feed.New(gw.Store)

		origin := uuid.New().String()
		publisher := realtime.NewPublisher(gw.Redis, origin)
		subscriber := realtime.NewSubscriber(gw.Redis, origin,
			realtime.NewFeedHandler(store),
			events.NewPublisher(hub),
		)
		if subscriber != nil {
			go subscriber.Run(ctx)
		} else {
			slog.Warn("Change feed is not configured; live updates arrive only through page loads")
		}

		cooldown := time.Duration(cfg.Submission.CooldownSeconds) * time.Second
		submitService := submission.New(gw.Store, gw.Media, publisher, cooldown)
		reactionService := reaction.New(gw.Store, store, publisher)

		// First page load; a failure is not fatal, visitors can load more.
		if err := store.LoadPage(ctx, 0, feed.ModeReplace); err != nil {
			slog.Error("Failed to load the first feed page", slog.String("error", err.Error()))
		}

		router.HandleFunc("GET /feed", wall.Feed(store))
		router.HandleFunc("POST /feed/more", wall.LoadMore(store))
		router.HandleFunc("POST /messages", wall.PostMessage(submitService))
		router.HandleFunc("POST /messages/{id}/reactions", wall.AddReaction(reactionService))
		router.HandleFunc("GET /ws", ws.Handler(hub))
	}

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: middleware.SessionMiddleware(router),
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
