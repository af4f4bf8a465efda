package auth

import (
	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// registers all authentication routes; meLimit guards the identity probe
func RegisterRoutes(router gin.IRouter, userRepo *users.Repository, issuer *auth.TokenIssuer, store sessions.Store, meLimit gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", LoginHandler(userRepo, issuer, store))
		authGroup.POST("/logout", LogoutHandler(store))
		authGroup.GET("/me", meLimit, auth.Middleware(issuer, store), GetCurrentUserHandler(userRepo))
	}
}
