package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

// failingStorage fails every operation
type failingStorage struct{}

var errQuota = errors.New("quota exceeded")

func (failingStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errQuota
}

func (failingStorage) SetItem(context.Context, string, string) error { return errQuota }
func (failingStorage) RemoveItem(context.Context, string) error      { return errQuota }
func (failingStorage) Close() error                                  { return nil }

func newTestStore(t *testing.T) (*Store, *storage.MemoryStorage, *fakeClock) {
	t.Helper()

	mem := storage.NewMemoryStorage()
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	return New(mem, WithClock(clock.Now)), mem, clock
}

func TestStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)
	user := &session.User{ID: "user-1", Username: "ada", Plan: session.PlanPremium}

	store.Set(ctx, session.Authenticated(user).Snapshot(clock.now))

	snap, ok := store.Get(ctx)
	require.True(t, ok)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, user, snap.User)
	assert.Equal(t, clock.now.UnixMilli(), snap.CapturedAt.UnixMilli())
}

func TestStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	store, mem, clock := newTestStore(t)

	store.Set(ctx, session.Authenticated(&session.User{ID: "u"}).Snapshot(clock.now))

	raw, ok, err := mem.GetItem(ctx, "auth_cache")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		fmt.Sprintf(`{"data":{"isAuthenticated":true,"user":{"id":"u","is_verified":false}},"timestamp":%d}`, clock.now.UnixMilli()),
		raw)
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store, mem, clock := newTestStore(t)

	store.Set(ctx, session.Unauthenticated(nil).Snapshot(clock.now))

	clock.now = clock.now.Add(DefaultTTL - time.Millisecond)
	_, ok := store.Get(ctx)
	assert.True(t, ok, "entry is valid just before the TTL")

	clock.now = clock.now.Add(time.Millisecond)
	_, ok = store.Get(ctx)
	assert.False(t, ok, "entry expires exactly at the TTL")

	_, present, err := mem.GetItem(ctx, "auth_cache")
	require.NoError(t, err)
	assert.False(t, present, "expired entry is evicted on read")
}

func TestStore_ArtificiallyAgedEntry(t *testing.T) {
	ctx := context.Background()
	store, mem, clock := newTestStore(t)

	aged := clock.now.Add(-6 * time.Minute).UnixMilli()
	require.NoError(t, mem.SetItem(ctx, "auth_cache",
		fmt.Sprintf(`{"data":{"isAuthenticated":true,"user":{"id":"u"}},"timestamp":%d}`, aged)))

	_, ok := store.Get(ctx)
	assert.False(t, ok)

	_, present, _ := mem.GetItem(ctx, "auth_cache") //nolint:errcheck // memory storage never fails
	assert.False(t, present)
}

func TestStore_CorruptEntriesAreMisses(t *testing.T) {
	ctx := context.Background()
	store, mem, clock := newTestStore(t)
	now := clock.now.UnixMilli()

	cases := map[string]string{
		"not json":              "{{{",
		"missing timestamp":     `{"data":{"isAuthenticated":false}}`,
		"future timestamp":      fmt.Sprintf(`{"data":{"isAuthenticated":false},"timestamp":%d}`, now+60_000),
		"authenticated no user": fmt.Sprintf(`{"data":{"isAuthenticated":true},"timestamp":%d}`, now),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, mem.SetItem(ctx, "auth_cache", raw))

			_, ok := store.Get(ctx)
			assert.False(t, ok)

			_, present, _ := mem.GetItem(ctx, "auth_cache") //nolint:errcheck // memory storage never fails
			assert.False(t, present)
		})
	}
}

func TestStore_UnauthenticatedDropsStrayUser(t *testing.T) {
	ctx := context.Background()
	store, mem, clock := newTestStore(t)

	require.NoError(t, mem.SetItem(ctx, "auth_cache",
		fmt.Sprintf(`{"data":{"isAuthenticated":false,"user":{"id":"stale"}},"timestamp":%d}`, clock.now.UnixMilli())))

	snap, ok := store.Get(ctx)
	require.True(t, ok)
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t)

	store.Set(ctx, session.Unauthenticated(nil).Snapshot(clock.now))
	store.Clear(ctx)
	store.Clear(ctx)

	_, ok := store.Get(ctx)
	assert.False(t, ok)
}

func TestStore_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := New(failingStorage{})

	assert.NotPanics(t, func() {
		store.Set(ctx, session.Authenticated(&session.User{ID: "u"}).Snapshot(time.Now()))
		store.Clear(ctx)
		store.SetCredentials(ctx, Credentials{Token: "t"})
		store.ClearCredentials(ctx)
	})

	_, ok := store.Get(ctx)
	assert.False(t, ok)
	assert.True(t, store.Credentials(ctx).Empty())
}

func TestStore_Credentials(t *testing.T) {
	ctx := context.Background()
	store, mem, _ := newTestStore(t)

	store.SetCredentials(ctx, Credentials{SessionID: "sid", Token: "jwt"})
	assert.Equal(t, Credentials{SessionID: "sid", Token: "jwt"}, store.Credentials(ctx))

	// empty fields remove the key
	store.SetCredentials(ctx, Credentials{Token: "jwt2"})
	_, present, _ := mem.GetItem(ctx, "session_id") //nolint:errcheck // memory storage never fails
	assert.False(t, present)
	assert.Equal(t, "jwt2", store.Credentials(ctx).Token)

	store.ClearCredentials(ctx)
	assert.True(t, store.Credentials(ctx).Empty())
}

func TestStore_WithTTL(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	clock := &fakeClock{now: time.Now()}
	store := New(mem, WithClock(clock.Now), WithTTL(time.Second))

	assert.Equal(t, time.Second, store.TTL())

	store.Set(ctx, session.Unauthenticated(nil).Snapshot(clock.now))
	clock.now = clock.now.Add(time.Second)

	_, ok := store.Get(ctx)
	assert.False(t, ok)
}
