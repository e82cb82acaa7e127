package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithAttrs(ctx, "user_id", 7)
	InfoContext(ctx, "document request submitted", "request_number", "DR-20261018-ABC234")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "req-42", got[0]["request_id"])
	assert.Equal(t, float64(7), got[0]["user_id"])
	assert.Equal(t, "DR-20261018-ABC234", got[0]["request_number"])
}

func TestFromContextFallsBack(t *testing.T) {
	assert.Equal(t, Get(), FromContext(context.Background()))
	assert.Equal(t, Get(), FromContext(nil)) //nolint:staticcheck
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "warn", "json")
	defer Initialize("info", "text")

	Debug("hidden")
	Info("hidden")
	Warn("shown")
	ExternalServiceResult("smtp", "send", errors.New("connection refused"))

	got := lines(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "shown", got[0]["msg"])
	assert.Equal(t, "smtp", got[1]["service"])
	assert.Equal(t, "connection refused", got[1]["error"])
}
