package dashboard

import (
	"encoding/json"
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
	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/scheduler"
	"github.com/fentz26/sailboard/internal/store"
	"github.com/fentz26/sailboard/internal/taskview"
)

const samplePath = "../connectors/fixture/testdata/dashboard.jsonc"

func newTestServer(t *testing.T, fixturePath string) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refresher := scheduler.New(st, audit.NewFetchRecorder(st), fixture.New(fixturePath), nil, logger)
	service := NewService(st, refresher, 2)
	return NewServer(service, st, "127.0.0.1:0", logger), st
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHealthEndpoint_OK(t *testing.T) {
	s, _ := newTestServer(t, samplePath)

	w := do(t, s.Handler(), http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	health := decode[HealthResponse](t, w)
	assert.True(t, health.OK)
	assert.Equal(t, "ok", health.DB)
	assert.NotEmpty(t, health.Version)
	assert.NotEmpty(t, health.Time)
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, samplePath)

	w := do(t, s.Handler(), http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthEndpoint_DBError(t *testing.T) {
	s, st := newTestServer(t, samplePath)
	require.NoError(t, st.Close())

	w := do(t, s.Handler(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	health := decode[HealthResponse](t, w)
	assert.False(t, health.OK)
	assert.NotEqual(t, "ok", health.DB)
}

func TestTasksEndpoint_FirstPage(t *testing.T) {
	s, _ := newTestServer(t, samplePath)

	w := do(t, s.Handler(), http.MethodGet, "/tasks")
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[TaskPage](t, w)
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 4, page.TotalFilteredCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	require.Len(t, page.Cards, 2)
	assert.Equal(t, "Aggregate Active Directory accounts", page.Cards[0].Name)
	assert.Equal(t, "Identity Refresh", page.Cards[1].Name)
	assert.Equal(t, taskview.InProgress, page.Cards[1].StatusLabel)
	assert.Equal(t, []string{"Success", "Error", "Warning"}, page.StatusOptions)
	assert.Equal(t, []string{"In Progress", "Success", "Error", "Warning"}, page.FilterChoices)
	assert.NotEmpty(t, page.Window)
	assert.NotEmpty(t, page.SnapshotID)
}

func TestTasksEndpoint_FilterAndClamp(t *testing.T) {
	s, _ := newTestServer(t, samplePath)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/tasks?q=WORKDAY&page=9")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[TaskPage](t, w)
	assert.Equal(t, 1, page.TotalFilteredCount)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Window)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "77b2f0", page.Cards[0].Task.ID)

	w = do(t, h, http.MethodGet, "/tasks?status=In+Progress&page_size=10")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[TaskPage](t, w)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "9a1c5d0e2b", page.Cards[0].Task.ID)

	w = do(t, h, http.MethodGet, "/tasks?page=2")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[TaskPage](t, w)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Cards, 2)
	assert.Equal(t, "c0ffee", page.Cards[1].Task.ID)
}

func TestTasksEndpoint_BadParams(t *testing.T) {
	s, _ := newTestServer(t, samplePath)
	h := s.Handler()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/tasks?page=abc").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/tasks?page_size=-1").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodDelete, "/tasks").Code)
}

func TestTaskByID(t *testing.T) {
	s, _ := newTestServer(t, samplePath)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/tasks/ef38f94347e94562b5bb8424a56397d8")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[taskview.Detail](t, w)
	assert.Equal(t, "support", detail.Launcher)
	assert.Equal(t, "2 min 5 sec", detail.Duration)
	require.Len(t, detail.Returns.Values, 2)
	assert.Equal(t, taskview.ReturnValue{Name: "total", Value: "1200"}, detail.Returns.Values[0])
	assert.Equal(t, []string{"Aggregation complete"}, detail.Messages)

	w = do(t, h, http.MethodGet, "/tasks/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrNotFound.Error(), decode[ErrorResponse](t, w).Error)
}

func TestRefreshAndHistory(t *testing.T) {
	s, _ := newTestServer(t, samplePath)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/tasks/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 4, body["task_count"])

	w = do(t, h, http.MethodGet, "/history?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]models.FetchRecord](t, w)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.OutcomeSuccess, rec.Outcome)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/history?limit=0").Code)
}

func TestSnapshotEndpoint(t *testing.T) {
	s, _ := newTestServer(t, samplePath)

	w := do(t, s.Handler(), http.MethodGet, "/snapshot")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[models.TaskSnapshot](t, w)
	assert.Equal(t, "fixture", snap.Connector)
	assert.Len(t, snap.Tasks, 4)
}

func TestTenantEndpoint(t *testing.T) {
	s, _ := newTestServer(t, samplePath)

	w := do(t, s.Handler(), http.MethodGet, "/tenant")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[models.TenantSnapshot](t, w)
	assert.Equal(t, "Acme Sandbox", snap.Tenant.FullName)
	assert.Equal(t, "fixture", snap.Connector)
}

func TestUpstreamFailure(t *testing.T) {
	s, _ := newTestServer(t, filepath.Join(t.TempDir(), "missing.jsonc"))
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/tasks")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "upstream fetch failed")

	w = do(t, h, http.MethodGet, "/health")
	health := decode[HealthResponse](t, w)
	assert.Equal(t, 1, health.Refresher.Failures)
}

func TestNoRefresher(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	s := NewServer(NewService(st, nil, 0), st, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := do(t, s.Handler(), http.MethodGet, "/tasks")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
