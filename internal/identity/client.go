// Package identity talks to the Identity Endpoint: "who am I", sign-in and
// logout.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/biolink/client/internal/session"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint = "http://localhost:8080"
	defaultTimeout  = 10 * time.Second

	// responses larger than this are treated as malformed
	maxBodyBytes = 1 << 20

	pathMe     = "/auth/me"
	pathLogin  = "/auth/login"
	pathLogout = "/auth/logout"
)

// manages HTTP requests to the identity endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// replaces the HTTP client; its cookie jar is replaced on ClearSession
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}

		// the client owns its cookie jar, the caller's client is left alone
		cp := *hc
		if cp.Jar == nil {
			cp.Jar = newJar()
		}
		c.httpClient = &cp
	}
}

// paces outgoing requests, rps <= 0 disables pacing
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// creates a new identity client. The cookie jar carries the ambient session.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     newJar(),
		},
		tracer: otel.Tracer("codeberg.org/biolink/client/internal/identity"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// sets the bearer token used instead of the cookie session
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// forgets the bearer token and every session cookie
func (c *Client) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	hc := *c.httpClient
	hc.Jar = newJar()
	c.httpClient = &hc
}

// Me asks the endpoint who the current session's user is.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	ctx, span := c.tracer.Start(ctx, "identity.Me")
	defer span.End()

	body, err := c.do(ctx, span, http.MethodGet, pathMe, nil)
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(body)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

// Logout ends the session on the endpoint side.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "identity.Logout")
	defer span.End()

	_, err := c.do(ctx, span, http.MethodPost, pathLogout, nil)
	return err
}

// result of a credential exchange
type SignInResult struct {
	User      *session.User
	Token     string
	SessionID string
}

// SignIn exchanges credentials for a session. The caller hands the result to
// the auth controller; SignIn itself does not change the client's auth state.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	ctx, span := c.tracer.Start(ctx, "identity.SignIn")
	defer span.End()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.do(ctx, span, http.MethodPost, pathLogin, payload)
	if err != nil {
		return nil, err
	}

	var resp signInResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = fmt.Errorf("%w: %v", ErrDecode, err)
		recordError(span, err)
		return nil, err
	}

	if !resp.User.Valid() {
		err := fmt.Errorf("%w: sign-in response has no user", ErrDecode)
		recordError(span, err)
		return nil, err
	}

	return &SignInResult{
		User:      resp.User,
		Token:     resp.Token,
		SessionID: resp.SessionID,
	}, nil
}

// sends one request and returns the body of a 2xx answer
func (c *Client) do(ctx context.Context, span trace.Span, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			err = fmt.Errorf("request pacing: %w", err)
			recordError(span, err)
			return nil, err
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	hc := *c.httpClient
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.String("request.id", requestID),
	)

	resp, err := hc.Do(req)
	if err != nil {
		err = &TransportError{Op: method + " " + path, Err: err}
		recordError(span, err)
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = &TransportError{Op: "read " + path, Err: err}
		recordError(span, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode, errorMessage(body), parseRetryAfter(resp.Header.Get("Retry-After")))
		recordError(span, err)
		return nil, err
	}

	return body, nil
}

// accepts {"user": {...}} as well as a bare user object
func decodeUser(body []byte) (*session.User, error) {
	var wrapped meResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if wrapped.User != nil {
		if !wrapped.User.Valid() {
			return nil, fmt.Errorf("%w: user has no id", ErrDecode)
		}

		return wrapped.User, nil
	}

	var bare session.User
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if !bare.Valid() {
		return nil, fmt.Errorf("%w: user has no id", ErrDecode)
	}

	return &bare, nil
}

// extracts the message of a standard error body, if any
func errorMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	return ""
}

// parses a delay-seconds Retry-After value; HTTP dates are ignored
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func newJar() http.CookieJar {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // only fails on a bad PublicSuffixList
	return jar
}
