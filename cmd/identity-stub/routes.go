package main

import (
	"codeberg.org/biolink/client/api/rest/auth"
	"codeberg.org/biolink/client/api/rest/health"
	"codeberg.org/biolink/client/api/rest/users"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	meLimit, err := RateLimitMiddleware(server.config.RateLimit)
	if err != nil {
		return err
	}

	router.Use(RequestLogger())
	router.Use(CORSMiddleware(server.config.AllowedOrigins))

	router.GET("/health", health.Handler)
	router.GET("/ping", health.PingHandler)

	auth.RegisterRoutes(router, server.userRepo, server.issuer, server.sessions, meLimit)
	users.RegisterRoutes(router, server.userRepo, server.issuer, server.sessions)

	return nil
}
