package main

import (
	"context"
	"fmt"

	"codeberg.org/biolink/client/internal/authctl"
	"codeberg.org/biolink/client/internal/config"
	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/sessionstore"
	"codeberg.org/biolink/client/internal/storage"
)

const identityBurst = 2

// holds the wired client components
type App struct {
	cfg      *config.Config
	storage  storage.Storage
	store    *sessionstore.Store
	identity *identity.Client
	auth     *authctl.Controller
}

// opens storage and builds the auth stack on top of it
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := storage.Open(ctx, storage.Options{
		Backend:  cfg.StorageBackend,
		Path:     cfg.StoragePath,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	log := logger.With("component", "auth")

	store := sessionstore.New(st,
		sessionstore.WithTTL(cfg.CacheTTL),
		sessionstore.WithLogger(log),
	)

	client := identity.NewClient(cfg.APIEndpoint, cfg.RequestTimeout,
		identity.WithRateLimit(cfg.IdentityRPS, identityBurst),
	)

	ctl := authctl.New(ctx, client, store, authctl.Config{Logger: log})

	return &App{
		cfg:      cfg,
		storage:  st,
		store:    store,
		identity: client,
		auth:     ctl,
	}, nil
}

// stops background work and releases storage
func (a *App) Close() {
	a.auth.Close()
	a.auth.Wait()

	if err := a.storage.Close(); err != nil {
		logger.ErrorErr(err, "failed to close storage")
	}
}
