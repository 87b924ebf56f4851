package tui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/sailboard/internal/audit"
	"github.com/fentz26/sailboard/internal/connectors/fixture"
	"github.com/fentz26/sailboard/internal/dashboard"
	"github.com/fentz26/sailboard/internal/scheduler"
	"github.com/fentz26/sailboard/internal/store"
)

func newDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refresher := scheduler.New(st, audit.NewFetchRecorder(st), fixture.New(fixturePath), nil, logger)
	server := dashboard.NewServer(dashboard.NewService(st, refresher, 0), st, "", logger)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Daemon(t *testing.T) {
	ts := newDaemon(t)
	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	tasks, err := c.Tasks(ctx, false)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	tenant, err := c.Tenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme-sb", tenant.Name)

	tasks, err = c.Tasks(ctx, true)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error":"upstream fetch failed: boom"}`)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Tasks(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, "API error (502): upstream fetch failed: boom", err.Error())
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url).Tenant(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to daemon")
}
