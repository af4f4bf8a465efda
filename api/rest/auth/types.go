package auth

import "codeberg.org/biolink/client/internal/session"

// LoginRequest carries the sign-in form
type LoginRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,max=72"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// AuthResponse returned after a successful sign-in
type AuthResponse struct {
	User      *session.User `json:"user"`
	Token     string        `json:"token"`
	SessionID string        `json:"session_id"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *session.User `json:"user"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
