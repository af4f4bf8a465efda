package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/biolink/client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-for-ada"

// minimal identity endpoint accepting one bearer token
func newIdentityServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var meCalls atomic.Int32
	user := map[string]any{
		"id":           "u-1",
		"username":     "ada",
		"display_name": "Ada",
		"email":        "ada@example.com",
		"plan":         "premium",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"user": user, "token": testToken, "session_id": "sid-1"}) //nolint:errcheck,gosec // test server
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user}) //nolint:errcheck,gosec // test server
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &meCalls
}

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()

	return &config.Config{
		Environment:    "test",
		APIEndpoint:    endpoint,
		StorageBackend: "file",
		StoragePath:    filepath.Join(t.TempDir(), "storage.json"),
		CacheTTL:       time.Minute,
		RequestTimeout: time.Second,
	}
}

func exec(t *testing.T, cfg *config.Config, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := dispatch(context.Background(), cfg, args[0], args[1:], &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSessionPersistsAcrossRuns(t *testing.T) {
	ts, meCalls := newIdentityServer(t)
	cfg := testConfig(t, ts.URL)

	code, out, _ := exec(t, cfg, "status")
	require.Equal(t, 0, code)
	assert.Equal(t, "signed out\n", out)

	code, out, _ = exec(t, cfg, "login", "-email", "ada@example.com", "-password", "pw")
	require.Equal(t, 0, code)
	assert.Equal(t, "signed in as Ada <ada@example.com>, plan premium\n", out)

	raw, err := os.ReadFile(cfg.StoragePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), testToken)

	// served from the cache, then revalidated with the stored token
	before := meCalls.Load()
	code, out, _ = exec(t, cfg, "status")
	require.Equal(t, 0, code)
	assert.Equal(t, "signed in as Ada <ada@example.com>, plan premium\n", out)
	assert.Equal(t, before+1, meCalls.Load())

	code, out, _ = exec(t, cfg, "refresh")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "signed in as Ada")

	code, out, _ = exec(t, cfg, "logout")
	require.Equal(t, 0, code)
	assert.Equal(t, "signed out\n", out)

	raw, err = os.ReadFile(cfg.StoragePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), testToken)

	code, out, _ = exec(t, cfg, "status")
	require.Equal(t, 0, code)
	assert.Equal(t, "signed out\n", out)
}

func TestLoginRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","message":"invalid email or password"}`)) //nolint:errcheck,gosec // test server
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	code, _, stderr := exec(t, testConfig(t, ts.URL), "login", "-email", "a@b.c", "-password", "x")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid email or password")
}

func TestDispatch_Usage(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	code, out, _ := exec(t, cfg, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "usage: biolink")

	code, _, stderr := exec(t, cfg, "dance")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command: dance")

	code, _, stderr = exec(t, cfg, "login", "-email", "a@b.c")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "-email and -password")

	code, _, _ = exec(t, cfg, "status", "extra")
	assert.Equal(t, 2, code)
}

func TestStatus_EndpointDown(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	code, out, _ := exec(t, cfg, "status")

	assert.Equal(t, 0, code)
	assert.Equal(t, "signed out\n", out)
}
