// Command mockapi serves the scoring API from the in-process mock backend,
// for local development against the live client.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"whatbeatsrock/internal/backend"
	"whatbeatsrock/internal/mockapi"
)

type config struct {
	Port        string        `env:"PORT" envDefault:"8000"`
	Secret      string        `env:"MOCK_JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL    time.Duration `env:"MOCK_TOKEN_TTL" envDefault:"24h"`
	WeakAnswers []string      `env:"MOCK_WEAK_ANSWERS" envSeparator:","`
	Blocked     []string      `env:"MOCK_BLOCKED_PHONES" envSeparator:","`
}

func main() {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("[FATAL] Failed to parse environment: %v", err)
	}

	mock := backend.NewMock(backend.MockOptions{
		Secret:      cfg.Secret,
		TokenTTL:    cfg.TokenTTL,
		WeakAnswers: cfg.WeakAnswers,
		Blocked:     cfg.Blocked,
	})

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	mockapi.NewHandler(mock).Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] Mock API shutdown: %v", err)
		}
	}()

	log.Printf("[INFO] Mock scoring API listening on http://localhost:%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[FATAL] Mock API failed: %v", err)
	}
}
