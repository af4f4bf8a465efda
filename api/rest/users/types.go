package users

import "codeberg.org/biolink/client/internal/session"

type UpdatePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free premium business"`
}

type UserResponse struct {
	User *session.User `json:"user"`
}
