package identity

import "codeberg.org/biolink/client/internal/session"

// REST API request/response types

type SignInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type meResponse struct {
	User *session.User `json:"user"`
}

type signInResponse struct {
	User      *session.User `json:"user"`
	Token     string        `json:"token"`
	SessionID string        `json:"session_id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
