package main

import (
	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/config"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// holds all dependencies and state for the identity stub
type Server struct {
	config   *config.StubConfig
	userRepo *users.Repository
	issuer   *auth.TokenIssuer
	sessions sessions.Store
	router   *gin.Engine
}
