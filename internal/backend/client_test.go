package backend

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storeops/storectl/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, logger *slog.Logger) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Settings{BaseURL: srv.URL + "/api/", Token: "s3cret", Timeout: 5 * time.Second}, logger)
	require.NoError(t, err)
	return c
}

func TestListSendsQueryAuthAndRequestID(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1}]`)
	}, nil)

	body, err := c.List(context.Background(), "/users", map[string]string{"status": "pending"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "/api/users", got.URL.Path)
	assert.Equal(t, "pending", got.URL.Query().Get("status"))
	assert.Equal(t, "Bearer s3cret", got.Header.Get("Authorization"))
	assert.NoError(t, uuid.Validate(got.Header.Get(RequestIDHeader)))
}

func TestListReturnsStatusError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"database offline"}`)
	}, nil)

	_, err := c.List(context.Background(), "/lost-items", nil)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "database offline", se.Detail())
	assert.Contains(t, err.Error(), "503 Service Unavailable: database offline")
	assert.Equal(t, 1, calls, "requests must not be retried")
}

func TestPostFormEncodesValues(t *testing.T) {
	type rejection struct {
		ID     string `form:"user_id"`
		Reason string `form:"reason"`
	}

	var method, contentType string
	var fields map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		fields = r.PostForm
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	err := c.PostForm(context.Background(), "/users/7/reject", rejection{ID: "7", Reason: "duplicate account"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Contains(t, contentType, "application/x-www-form-urlencoded")
	assert.Equal(t, []string{"7"}, fields["user_id"])
	assert.Equal(t, []string{"duplicate account"}, fields["reason"])
}

func TestDeleteNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	err := c.Delete(context.Background(), "/items/9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestTraceLoggingRedactsHeaders(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: log.LevelTrace}))

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Set-Cookie", "session=abc")
		_, _ = io.WriteString(w, `[]`)
	}, logger)

	_, err := c.List(context.Background(), "/credit-customers", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "HTTP response")
	assert.Contains(t, out, "/api/credit-customers")
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "session=abc")
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://store.example", "/api"} {
		_, err := NewClient(Settings{BaseURL: raw}, nil)
		assert.Error(t, err, raw)
	}
}
