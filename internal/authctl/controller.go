// Package authctl owns the client's authentication state machine.
//
// The controller starts in the Unknown state and settles to Authenticated or
// Unauthenticated. A start-up check serves a fresh cached snapshot
// immediately and revalidates it against the identity endpoint in the
// background; without a usable cache it asks the endpoint directly, retrying
// rate limiting and network failures. Explicit Login, Logout and RefreshAuth
// transitions replace the published state at once.
//
// No method reports a check failure to the caller. Every failure resolves to
// Unauthenticated with the cache cleared; the cause stays available through
// session.State.Err for diagnostics.
package authctl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "codeberg.org/biolink/client/internal/errors"
	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/retry"
	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/sessionstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRevalidateDelay = 100 * time.Millisecond
	DefaultMaxAttempts     = 3
	DefaultRateLimitStep   = time.Second
	DefaultNetworkStep     = 500 * time.Millisecond

	checkKey = "auth-check"
)

// returned by Login when the user record cannot back an authenticated state
var ErrInvalidUser = errors.New("login requires a user with an id")

// Identity is the part of the identity endpoint client the controller needs.
type Identity interface {
	Me(ctx context.Context) (*session.User, error)
	Logout(ctx context.Context) error
	SetToken(token string)
	ClearSession()
}

type Config struct {
	// wait before a cache hit is revalidated in the background
	RevalidateDelay time.Duration
	MaxAttempts     int
	// backoff steps, the n-th retry waits n*step
	RateLimitStep time.Duration
	NetworkStep   time.Duration
	Logger        *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.RevalidateDelay <= 0 {
		c.RevalidateDelay = DefaultRevalidateDelay
	}

	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}

	if c.RateLimitStep <= 0 {
		c.RateLimitStep = DefaultRateLimitStep
	}

	if c.NetworkStep <= 0 {
		c.NetworkStep = DefaultNetworkStep
	}

	if c.Logger == nil {
		c.Logger = logger.Default()
	}

	return c
}

type Controller struct {
	identity Identity
	store    *sessionstore.Store
	cfg      Config
	logger   *slog.Logger
	retrier  *retry.Retrier
	tracer   trace.Tracer

	// collapses concurrent checks into one in-flight call
	group singleflight.Group

	// held from the epoch check through the cache write, so an explicit
	// transition and a check result never interleave their cache writes
	writeMu sync.Mutex

	mu      sync.RWMutex
	state   session.State
	epoch   uint64 // bumped by explicit transitions, stale check results are dropped
	subs    map[uint64]chan session.State
	nextSub uint64
	closed  bool
	done    chan struct{}

	background sync.WaitGroup
}

// New creates a controller in the Unknown state. Session identifiers kept in
// the store are handed back to the identity client.
func New(ctx context.Context, id Identity, store *sessionstore.Store, cfg Config) *Controller {
	cfg = cfg.withDefaults()

	c := &Controller{
		identity: id,
		store:    store,
		cfg:      cfg,
		logger:   cfg.Logger,
		retrier: retry.NewRetrier(
			identity.BackoffPolicy(cfg.MaxAttempts, cfg.RateLimitStep, cfg.NetworkStep),
			cfg.Logger,
		),
		tracer: otel.Tracer("codeberg.org/biolink/client/internal/authctl"),
		state:  session.Unknown(),
		subs:   make(map[uint64]chan session.State),
		done:   make(chan struct{}),
	}

	if creds := store.Credentials(ctx); creds.Token != "" {
		id.SetToken(creds.Token)
	}

	return c
}

// returns the currently published state
func (c *Controller) State() session.State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// CheckAuthStatus settles the auth state. Concurrent callers share one
// in-flight check and all receive its result. A caller whose ctx ends stops
// waiting and gets the currently published state; the check itself runs on.
func (c *Controller) CheckAuthStatus(ctx context.Context) session.State {
	return c.check(ctx, false)
}

// RefreshAuth drops the cache and asks the identity endpoint once, without
// retries. The state is Unknown until the answer arrives.
func (c *Controller) RefreshAuth(ctx context.Context) session.State {
	ctx, span := c.tracer.Start(ctx, "authctl.RefreshAuth")
	defer span.End()

	c.writeMu.Lock()
	epoch := c.transition(session.Unknown())
	c.store.Clear(context.WithoutCancel(ctx))
	c.writeMu.Unlock()

	return c.detach(ctx, func(ctx context.Context) session.State {
		user, err := c.identity.Me(ctx)
		return c.resolve(ctx, epoch, user, err)
	})
}

// Login publishes Authenticated for a user whose credentials were already
// exchanged elsewhere. No network call is made.
func (c *Controller) Login(ctx context.Context, user *session.User, creds sessionstore.Credentials) error {
	if !user.Valid() {
		return ErrInvalidUser
	}

	state := session.Authenticated(user)
	ctx = context.WithoutCancel(ctx)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.transition(state)

	if creds.Token != "" {
		c.identity.SetToken(creds.Token)
	}

	if !creds.Empty() {
		c.store.SetCredentials(ctx, creds)
	}

	c.store.Set(ctx, state.Snapshot(time.Now()))
	c.logger.Info("signed in", "user_id", user.ID)

	return nil
}

// Logout tells the identity endpoint, ignoring failures, then publishes
// Unauthenticated and forgets every client-held session identifier.
func (c *Controller) Logout(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "authctl.Logout")
	defer span.End()

	// checks already in flight must not republish the old user
	c.bumpEpoch()

	if err := c.identity.Logout(ctx); err != nil {
		c.logger.Warn("logout request failed", "category", apperrors.Classify(err).Category, "error", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.transition(session.Unauthenticated(nil))
	c.identity.ClearSession()

	ctx = context.WithoutCancel(ctx)
	c.store.ClearCredentials(ctx)
	c.store.Clear(ctx)
	c.logger.Info("signed out")
}

// Subscribe returns a channel receiving the current state and then every
// published state. Slow readers only see the latest one. The channel is
// closed by cancel or Close.
func (c *Controller) Subscribe() (<-chan session.State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan session.State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

// Close marks the consumers as gone. Running checks still finish and keep the
// cache current, but nothing is published any more.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.done)

	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// Wait blocks until scheduled background revalidations and checks abandoned by
// their callers have finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

func (c *Controller) check(ctx context.Context, forced bool) session.State {
	return c.detach(ctx, func(ctx context.Context) session.State {
		v, _, shared := c.group.Do(checkKey, func() (any, error) {
			return c.runCheck(ctx, forced), nil
		})

		if shared {
			c.logger.Debug("joined in-flight auth check")
		}

		return v.(session.State)
	})
}

// detach runs fn without the caller's cancellation so an abandoned caller
// never turns into a failed check. The caller waits until fn returns or its
// own ctx ends, whichever is first.
func (c *Controller) detach(ctx context.Context, fn func(ctx context.Context) session.State) session.State {
	result := make(chan session.State, 1)

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		result <- fn(context.WithoutCancel(ctx))
	}()

	select {
	case state := <-result:
		return state
	case <-ctx.Done():
		c.logger.Debug("stopped waiting for auth check", "error", ctx.Err())
		return c.State()
	}
}

func (c *Controller) runCheck(ctx context.Context, forced bool) session.State {
	ctx, span := c.tracer.Start(ctx, "authctl.check", trace.WithAttributes(attribute.Bool("forced", forced)))
	defer span.End()

	epoch := c.currentEpoch()

	if !forced {
		if snap, ok := c.store.Get(ctx); ok {
			state := session.FromSnapshot(snap)
			span.SetAttributes(attribute.Bool("cache_hit", true))

			if !c.commit(epoch, state) {
				return c.State()
			}

			c.logger.Debug("auth settled from cache", "status", state.Status().String())
			c.scheduleRevalidation()

			return state
		}
	}

	var user *session.User
	attempts, err := c.retrier.Do(ctx, func(ctx context.Context, _ int) error {
		u, err := c.identity.Me(ctx)
		if err != nil {
			return err
		}

		user = u
		return nil
	})

	span.SetAttributes(attribute.Int("attempts", attempts))
	return c.resolve(ctx, epoch, user, err)
}

// publishes the outcome of an identity call and mirrors it into the cache
func (c *Controller) resolve(ctx context.Context, epoch uint64, user *session.User, err error) session.State {
	var state session.State
	if err != nil {
		state = session.Unauthenticated(err)
	} else {
		state = session.Authenticated(user)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if !c.commit(epoch, state) {
		c.logger.Debug("discarding stale auth check result", "status", state.Status().String())
		return c.State()
	}

	if state.IsAuthenticated() {
		c.store.Set(ctx, state.Snapshot(time.Now()))
	} else {
		c.store.Clear(ctx)
	}

	if cause := state.Err(); cause != nil {
		c.logger.Debug("auth settled unauthenticated",
			"category", apperrors.Classify(cause).Category,
			"error", cause,
		)
	} else {
		c.logger.Debug("auth settled", "status", state.Status().String())
	}

	return state
}

// runs a forced check after the revalidation delay, off the caller's path
func (c *Controller) scheduleRevalidation() {
	c.background.Add(1)

	go func() {
		defer c.background.Done()

		timer := time.NewTimer(c.cfg.RevalidateDelay)
		defer timer.Stop()

		select {
		case <-c.done:
			return
		case <-timer.C:
		}

		c.check(context.Background(), true)
	}()
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.epoch
}

func (c *Controller) bumpEpoch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
}

// publishes state for an explicit transition and invalidates running checks
func (c *Controller) transition(state session.State) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.publishLocked(state)

	return c.epoch
}

// publishes state unless an explicit transition happened since epoch
func (c *Controller) commit(epoch uint64, state session.State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return false
	}

	c.publishLocked(state)
	return true
}

func (c *Controller) publishLocked(state session.State) {
	c.state = state

	if c.closed {
		return
	}

	for _, ch := range c.subs {
		offer(ch, state)
	}
}

// latest-wins send on a channel with capacity one
func offer(ch chan session.State, state session.State) {
	select {
	case ch <- state:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- state:
	default:
	}
}
