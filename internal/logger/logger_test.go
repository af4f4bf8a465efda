package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionWritesJSON(t *testing.T) {
	t.Cleanup(func() { Configure("", nil) })

	var buf bytes.Buffer
	Configure("production", &buf)

	Debug("hidden")
	Info("auth settled", "status", "authenticated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "auth settled", line["msg"])
	assert.Equal(t, "authenticated", line["status"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestConfigure_DevelopmentWritesTextAtDebug(t *testing.T) {
	t.Cleanup(func() { Configure("", nil) })

	var buf bytes.Buffer
	Configure("development", &buf)

	Debug("cache miss", "key", "auth_cache")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "key=auth_cache")
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), custom)

	assert.Same(t, custom, FromContext(ctx))
}

func TestEnableOTel_KeepsLocalOutput(t *testing.T) {
	t.Cleanup(func() { Configure("", nil) })

	var buf bytes.Buffer
	Configure("development", &buf)
	EnableOTel("biolink-test")

	With("component", "authctl").Info("state changed")

	assert.Contains(t, buf.String(), "state changed")
	assert.Contains(t, buf.String(), "component=authctl")
}

func TestFanout_Enabled(t *testing.T) {
	quiet := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	loud := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.True(t, fanout{quiet, loud}.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, fanout{quiet}.Enabled(context.Background(), slog.LevelInfo))
}
