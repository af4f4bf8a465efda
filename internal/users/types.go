package users

import (
	"errors"
	"sync"
	"time"

	"codeberg.org/biolink/client/internal/session"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// keeps stub accounts in memory
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
}

// represents an account known to the identity stub
type User struct {
	ID           string
	Email        string
	Username     string
	DisplayName  string
	AvatarURL    string
	IsVerified   bool
	Plan         string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// converts the account into the record served by /auth/me
func (u *User) Public() *session.User {
	return &session.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		IsVerified:  u.IsVerified,
		Plan:        u.Plan,
	}
}
