package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	"github.com/fakhrymubarak/character-challenge-api/internal/handler"
	"github.com/fakhrymubarak/character-challenge-api/internal/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(characterHandler *handler.CharacterHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/challengeapi", characterHandler.HandleChallenge)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func newServer(mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           mux,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 60*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsCacheEnabled() {
		if err := redis.Ping(redis.GetContext()); err != nil {
			logger.Warnw("Redis unreachable, pages will be fetched upstream", "addr", config.GetRedisAddr(), "error", err)
		}
	}

	srv := newServer(newRouter(handler.NewCharacterHandler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infow("Character challenge API running", "addr", srv.Addr, "upstream", config.GetCharacterApiUrl())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
	logger.Infow("Server stopped")
}
