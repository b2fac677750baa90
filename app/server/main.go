package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
	"github.com/fediBlack/we-budget/internal/middleware"
	"github.com/fediBlack/we-budget/internal/presence"
	"github.com/fediBlack/we-budget/internal/socket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store := presence.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		time.Duration(cfg.PresenceTTLSeconds)*time.Second)
	defer store.Close()

	writer := presence.NewWriter(store, presence.WriterConfig{
		QueueSize: cfg.PresenceQueueSize,
		Workers:   cfg.PresenceWorkers,
	})
	store.StartCleanupLoop(time.Duration(cfg.PresenceCleanupSeconds) * time.Second)

	metrics := socket.NewMetrics()
	hub := socket.NewHub(cfg, metrics)

	registry := fanout.NewRegistry()
	index := fanout.NewIndex()
	gateway := fanout.NewGateway(registry, index, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", socket.WSHandler(hub, gateway, cfg, writer))
	mux.HandleFunc("/publish", socket.PublishHandler(gateway, cfg, metrics))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", socket.MetricsHandler(metrics, writer))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.Recovery(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("fan-out gateway listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)

		writer.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
