package main

import (
	"fmt"

	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/config"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.StubConfig) (*Server, error) {
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	store, err := auth.NewSessionStore(cfg.SessionSecret, cfg.Environment == "production")
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		config:   cfg,
		userRepo: users.NewRepository(),
		issuer:   issuer,
		sessions: store,
		router:   gin.New(),
	}

	srv.router.Use(gin.Recovery())

	if err := RegisterRoutes(srv.router, srv); err != nil {
		return nil, err
	}

	return srv, nil
}
