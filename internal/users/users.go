package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/biolink/client/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// creates an empty user repository
func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

// SignIn verifies the password of an existing account, or creates the account
// on first use.
func (r *Repository) SignIn(_ context.Context, email, password, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byEmail[email]; ok {
		user := r.byID[id]
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}

		copied := *user
		return &copied, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := usernameFromEmail(email)
	if displayName == "" {
		displayName = username
	}

	now := time.Now()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		Plan:         session.PlanFree,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[user.ID] = user
	r.byEmail[email] = user.ID

	copied := *user
	return &copied, nil
}

// finds a user by their ID
func (r *Repository) FindByID(_ context.Context, userID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *user
	return &copied, nil
}

// changes the plan tier of a user, e.g. after a payment settled
func (r *Repository) UpdatePlan(_ context.Context, userID, plan string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}

	user.Plan = plan
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

// marks the email of a user as verified
func (r *Repository) MarkVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return ErrNotFound
	}

	user.IsVerified = true
	user.UpdatedAt = time.Now()
	return nil
}

// local part of the address, lowercased
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}
