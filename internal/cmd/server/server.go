// Package server wires configuration, storage, services, and the HTTP
// handler into the questhall server process.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ebonmoor/questhall/internal/adventure"
	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/ebonmoor/questhall/internal/campaign"
	"github.com/ebonmoor/questhall/internal/platform/config"
	"github.com/ebonmoor/questhall/internal/storage/sqlite"
	"github.com/ebonmoor/questhall/internal/web"
)

// Config holds server command configuration.
type Config struct {
	HTTPAddr   string        `env:"QUESTHALL_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath     string        `env:"QUESTHALL_DB_PATH" envDefault:"questhall.db"`
	SessionKey string        `env:"QUESTHALL_SESSION_KEY"`
	SessionTTL time.Duration `env:"QUESTHALL_SESSION_TTL" envDefault:"24h"`
}

// ParseConfig loads configuration from the environment, then lets flags
// override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.FromEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.SessionKey, "session-key", cfg.SessionKey, "HMAC key for session cookies")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.SessionKey == "" {
		return Config{}, fmt.Errorf("session key is required (QUESTHALL_SESSION_KEY or -session-key)")
	}
	return cfg, nil
}

// Run starts the questhall HTTP server and blocks until ctx is cancelled or
// the listener fails.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	authService := auth.NewService(store, store)
	adventureService := adventure.NewService(store, store)
	campaignService := campaign.NewService(store, store, store)

	handler, err := web.NewHandler(web.Config{
		SessionKey: []byte(cfg.SessionKey),
		SessionTTL: cfg.SessionTTL,
	}, authService, adventureService, campaignService)
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	log.Printf("listening on %s (db %s)", cfg.HTTPAddr, cfg.DBPath)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
