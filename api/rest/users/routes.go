package users

import (
	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

func RegisterRoutes(router gin.IRouter, userRepo *users.Repository, issuer *auth.TokenIssuer, store sessions.Store) {
	me := router.Group("/users/me")
	me.Use(auth.Middleware(issuer, store)) // all user routes require authentication

	me.PUT("/plan", UpdatePlan(userRepo))
	me.POST("/verify", Verify(userRepo))
}
