// Package sessionstore persists the last known authentication snapshot for a
// bounded time so the client can settle its auth state without waiting on the
// network.
//
// Every failure degrades to a cache miss. Nothing in this package returns an
// error to the caller.
package sessionstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/storage"
)

// how long a cached snapshot may be served before it must be revalidated
const DefaultTTL = 5 * time.Minute

// storage keys; the credential keys are cleared together with the cache on logout
const (
	keyAuthCache = "auth_cache"
	keySessionID = "session_id"
	keyAuthToken = "auth_token"
)

// persisted layout of the cache entry
type entry struct {
	Data      session.Snapshot `json:"data"`
	Timestamp int64            `json:"timestamp"` // unix milliseconds
}

// client-held session identifiers for transports that do not use cookies
type Credentials struct {
	SessionID string
	Token     string
}

func (c Credentials) Empty() bool {
	return c.SessionID == "" && c.Token == ""
}

type Store struct {
	storage storage.Storage
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// replaces the time source, used to age entries in tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// creates a store on top of the given storage
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached snapshot if present, parseable and younger than the
// TTL. Expired or unusable entries are deleted on read.
func (s *Store) Get(ctx context.Context) (session.Snapshot, bool) {
	raw, ok, err := s.storage.GetItem(ctx, keyAuthCache)
	if err != nil {
		s.logger.Warn("auth cache read failed", "error", err)
		return session.Snapshot{}, false
	}

	if !ok {
		return session.Snapshot{}, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		s.logger.Debug("auth cache entry is corrupt, discarding", "error", err)
		s.remove(ctx, keyAuthCache)
		return session.Snapshot{}, false
	}

	capturedAt := time.UnixMilli(e.Timestamp)
	now := s.now()

	// an entry from the future cannot be aged reliably
	if e.Timestamp <= 0 || capturedAt.After(now) || !now.Before(capturedAt.Add(s.ttl)) {
		s.logger.Debug("auth cache entry expired", "captured_at", capturedAt)
		s.remove(ctx, keyAuthCache)
		return session.Snapshot{}, false
	}

	if e.Data.IsAuthenticated && !e.Data.User.Valid() {
		s.logger.Debug("auth cache entry has no user, discarding")
		s.remove(ctx, keyAuthCache)
		return session.Snapshot{}, false
	}

	if !e.Data.IsAuthenticated {
		e.Data.User = nil
	}

	e.Data.CapturedAt = capturedAt
	return e.Data, true
}

// Set overwrites the entry, stamped with the current time. Write failures are
// logged and dropped.
func (s *Store) Set(ctx context.Context, snap session.Snapshot) {
	data, err := json.Marshal(entry{
		Data:      snap,
		Timestamp: s.now().UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("failed to encode auth cache entry", "error", err)
		return
	}

	if err := s.storage.SetItem(ctx, keyAuthCache, string(data)); err != nil {
		s.logger.Warn("auth cache write failed", "error", err)
	}
}

// Clear deletes the entry. Idempotent.
func (s *Store) Clear(ctx context.Context) {
	s.remove(ctx, keyAuthCache)
}

// stores session identifiers, empty fields are removed
func (s *Store) SetCredentials(ctx context.Context, c Credentials) {
	s.put(ctx, keySessionID, c.SessionID)
	s.put(ctx, keyAuthToken, c.Token)
}

// returns the stored session identifiers, empty when unreadable
func (s *Store) Credentials(ctx context.Context) Credentials {
	return Credentials{
		SessionID: s.read(ctx, keySessionID),
		Token:     s.read(ctx, keyAuthToken),
	}
}

func (s *Store) ClearCredentials(ctx context.Context) {
	s.remove(ctx, keySessionID)
	s.remove(ctx, keyAuthToken)
}

func (s *Store) put(ctx context.Context, key, value string) {
	if value == "" {
		s.remove(ctx, key)
		return
	}

	if err := s.storage.SetItem(ctx, key, value); err != nil {
		s.logger.Warn("storage write failed", "key", key, "error", err)
	}
}

func (s *Store) read(ctx context.Context, key string) string {
	value, _, err := s.storage.GetItem(ctx, key)
	if err != nil {
		s.logger.Warn("storage read failed", "key", key, "error", err)
		return ""
	}

	return value
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.storage.RemoveItem(ctx, key); err != nil {
		s.logger.Warn("storage delete failed", "key", key, "error", err)
	}
}
