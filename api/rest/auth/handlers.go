package auth

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/errors"
	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// LoginHandler godoc
// @Summary Sign in
// @Description Verify credentials, creating the account on first use. Returns user data, a JWT and the session id
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func LoginHandler(userRepo *users.Repository, issuer *auth.TokenIssuer, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userRepo.SignIn(c.Request.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			if stderrors.Is(err, users.ErrInvalidCredentials) {
				errors.Unauthorized(c, "invalid email or password")
				return
			}

			errors.InternalError(c, "failed to sign in", err)
			return
		}

		token, err := issuer.Generate(user.ID, user.Email, user.Plan)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		sessionID, err := auth.StartSession(store, c.Writer, c.Request, user.ID)
		if err != nil {
			errors.InternalError(c, "failed to start session", err)
			return
		}

		logger.Info("user signed in", "user_id", user.ID)

		c.JSON(http.StatusOK, AuthResponse{
			User:      user.Public(),
			Token:     token,
			SessionID: sessionID,
		})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the authenticated user's record
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)

		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			// a token for an account this process never saw is as good as no token
			errors.Unauthorized(c, "unknown user")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user.Public()})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func LogoutHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.EndSession(store, c.Writer, c.Request); err != nil {
			logger.ErrorErr(err, "failed to clear session cookie")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}
