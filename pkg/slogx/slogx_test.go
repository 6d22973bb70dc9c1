package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestRedactSensitive(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Level: "debug", Format: "json", Output: &buf})

	logger.Info("login",
		"email", "a@x.com",
		"password", "Aa1!aaaa",
		"new_password", "Bb2@bbbb",
		"password_hash", "$2a$12$abc",
		"token", "eyJhbGciOi",
		"jwt_secret", "hunter2",
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	require.Equal(t, "a@x.com", line["email"])
	for _, key := range []string{"password", "new_password", "password_hash", "token", "jwt_secret"} {
		require.Equal(t, slogx.Redacted, line[key], key)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := slogx.WithContext(context.Background(), logger)
	require.Equal(t, logger, slogx.FromContext(ctx))
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.New(slogx.Config{Service: "test", Format: "json", Output: &buf})

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	require.Equal(t, "req-123", inner["req_id"])
	require.Equal(t, "http_request", access["msg"])
	require.EqualValues(t, http.StatusTeapot, access["status"])
}

func TestHTTPMiddlewareRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "caller id kept", header: "abc-123", keep: true},
		{name: "missing id minted", header: ""},
		{name: "spaces rejected", header: "abc 123"},
		{name: "oversized rejected", header: string(bytes.Repeat([]byte("a"), 65))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := slogx.New(slogx.Config{Service: "test", Level: "error", Output: &bytes.Buffer{}})
			h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(slogx.RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(slogx.RequestIDHeader)
			require.NotEmpty(t, got)
			if tt.keep {
				require.Equal(t, tt.header, got)
			} else {
				require.NotEqual(t, tt.header, got)
				require.Len(t, got, 26)
			}
		})
	}
}

func TestHTTPMiddlewareLevels(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.New(slogx.Config{Service: "test", Format: "json", Output: &buf})

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "ERROR", line["level"])
	require.EqualValues(t, 4, line["bytes"])
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Format: "json", Output: &buf})

	ctx := slogx.WithContext(context.Background(), logger)
	require.Equal(t, ctx, slogx.With(ctx))

	ctx = slogx.With(ctx, "user_id", "u1")
	slogx.FromContext(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "u1", line["user_id"])
}
