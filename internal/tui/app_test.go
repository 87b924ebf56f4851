package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/connectors/fixture"
	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/taskview"
)

const fixturePath = "../connectors/fixture/testdata/dashboard.jsonc"

type fakeSource struct {
	tenant    *models.Tenant
	tenantErr error
	tasks     []models.Task
	tasksErr  error
	refreshes int
}

func (f *fakeSource) Tenant(ctx context.Context) (*models.Tenant, error) {
	return f.tenant, f.tenantErr
}

func (f *fakeSource) Tasks(ctx context.Context, refresh bool) ([]models.Task, error) {
	if refresh {
		f.refreshes++
	}
	return f.tasks, f.tasksErr
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLoadedApp(t *testing.T, pageSize int) *App {
	t.Helper()
	src := NewConnectorSource(fixture.New(fixturePath), connectors.DefaultListOptions())
	a := New(src, pageSize)
	a.now = func() time.Time { return time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC) }

	a.Update(a.fetchTenant()())
	a.Update(a.fetchTasks(false)())
	require.NoError(t, a.tenantErr)
	require.NoError(t, a.tasksErr)
	require.Len(t, a.vm.Tasks(), 4)
	return a
}

func cardIDs(l taskview.Listing) []string {
	ids := make([]string, 0, len(l.Cards))
	for _, c := range l.Cards {
		ids = append(ids, c.Task.ID)
	}
	return ids
}

func TestApp_Load(t *testing.T) {
	a := newLoadedApp(t, 10)

	assert.False(t, a.loading)
	assert.Equal(t, "Acme Sandbox", a.tenant.FullName)
	assert.Equal(t, []string{"ef38f94347e94562b5bb8424a56397d8", "9a1c5d0e2b", "77b2f0", "c0ffee"}, cardIDs(a.listing()))

	view := a.View()
	assert.Contains(t, view, "Acme Sandbox")
	assert.Contains(t, view, "staging")
	assert.Contains(t, view, "Identity Refresh")
	assert.Contains(t, view, "Showing 4 of 4 tasks")
}

func TestApp_StatusCycle(t *testing.T) {
	a := newLoadedApp(t, 10)

	a.Update(keyRunes("s"))
	assert.Equal(t, taskview.InProgress, a.vm.State().Status)
	assert.Equal(t, []string{"9a1c5d0e2b"}, cardIDs(a.listing()))

	a.Update(keyRunes("s"))
	assert.Equal(t, "Success", a.vm.State().Status)

	a.Update(keyRunes("s"))
	a.Update(keyRunes("s"))
	assert.Equal(t, "Warning", a.vm.State().Status)
	assert.Equal(t, []string{"c0ffee"}, cardIDs(a.listing()))

	a.Update(keyRunes("s"))
	assert.Equal(t, "", a.vm.State().Status)
	assert.Len(t, a.listing().Cards, 4)
}

func TestApp_Pagination(t *testing.T) {
	a := newLoadedApp(t, 2)

	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, a.vm.State().Page)
	assert.Equal(t, []string{"77b2f0", "c0ffee"}, cardIDs(a.listing()))

	a.Update(keyRunes("l"))
	assert.Equal(t, 2, a.vm.State().Page)

	a.Update(keyRunes("h"))
	assert.Equal(t, 1, a.vm.State().Page)

	a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, a.vm.State().Page)
}

func TestApp_FilterClampsPage(t *testing.T) {
	a := newLoadedApp(t, 2)

	a.Update(keyRunes("l"))
	require.Equal(t, 2, a.vm.State().Page)

	a.Update(keyRunes("s"))
	assert.Equal(t, 1, a.vm.State().Page)
}

func TestApp_Search(t *testing.T) {
	a := newLoadedApp(t, 10)

	a.Update(keyRunes("/"))
	require.True(t, a.searching)

	a.Update(keyRunes("WORKDAY"))
	assert.Equal(t, "WORKDAY", a.vm.State().Query)
	assert.Equal(t, []string{"77b2f0"}, cardIDs(a.listing()))

	// While searching, letters go to the input rather than key bindings.
	a.Update(keyRunes("q"))
	assert.Equal(t, "WORKDAYq", a.vm.State().Query)
	assert.Empty(t, a.listing().Cards)

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.searching)
	assert.Equal(t, "WORKDAYq", a.vm.State().Query)

	a.Update(keyRunes("/"))
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.searching)
	assert.Equal(t, "", a.vm.State().Query)
	assert.Len(t, a.listing().Cards, 4)
}

func TestApp_ClearFilters(t *testing.T) {
	a := newLoadedApp(t, 10)

	a.Update(keyRunes("s"))
	a.Update(keyRunes("s"))
	require.Equal(t, "Success", a.vm.State().Status)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, taskview.DefaultFilterState(), a.vm.State())
	assert.Equal(t, 0, a.statusIdx)
}

func TestApp_SelectAndExpand(t *testing.T) {
	a := newLoadedApp(t, 10)

	a.Update(keyRunes("k"))
	assert.Equal(t, 0, a.cursor)

	a.Update(keyRunes("j"))
	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	a.Update(keyRunes("j"))
	a.Update(keyRunes("j"))
	assert.Equal(t, 3, a.cursor)

	a.Update(keyRunes("k"))
	a.Update(keyRunes("k"))
	a.Update(keyRunes("k"))
	require.Equal(t, 0, a.cursor)

	assert.NotContains(t, a.View(), "Return Values")

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, a.expanded.IsExpanded("ef38f94347e94562b5bb8424a56397d8"))

	view := a.View()
	assert.Contains(t, view, "Return Values")
	assert.Contains(t, view, "Aggregation complete")
	assert.Contains(t, view, "Unchanged")

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.expanded.IsExpanded("ef38f94347e94562b5bb8424a56397d8"))
}

func TestApp_RefreshResetsState(t *testing.T) {
	src := &fakeSource{
		tenant: &models.Tenant{Name: "acme"},
		tasks:  []models.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}
	a := New(src, 1)
	a.Update(a.fetchTenant()())
	a.Update(a.fetchTasks(false)())

	a.Update(keyRunes("l"))
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 2, a.vm.State().Page)
	require.True(t, a.expanded.IsExpanded("b"))

	_, cmd := a.Update(keyRunes("r"))
	require.NotNil(t, cmd)
	assert.True(t, a.loading)

	a.Update(cmd())
	assert.Equal(t, 1, src.refreshes)
	assert.False(t, a.loading)
	assert.Equal(t, taskview.DefaultFilterState(), a.vm.State())
	assert.False(t, a.expanded.IsExpanded("b"))
}

func TestApp_TenantError(t *testing.T) {
	src := &fakeSource{tenantErr: errors.New("401 unauthorized")}
	a := New(src, 10)
	a.Update(a.fetchTenant()())
	a.Update(a.fetchTasks(false)())

	view := a.View()
	assert.Contains(t, view, TenantLoadError)
	assert.Contains(t, view, "401 unauthorized")
}

func TestApp_TenantErrorKeepsTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "t1", "description": "Aggregate Okta accounts", "completionStatus": "Success"}]`), 0o600))

	a := New(NewConnectorSource(fixture.New(path), connectors.DefaultListOptions()), 10)
	a.Update(a.fetchTenant()())
	a.Update(a.fetchTasks(false)())
	require.Error(t, a.tenantErr)
	require.NoError(t, a.tasksErr)

	view := a.View()
	assert.Contains(t, view, TenantLoadError)
	assert.Contains(t, view, "no tenant in fixture")
	assert.Contains(t, view, "Aggregate Okta accounts")
	assert.Contains(t, view, "Showing 1 of 1 tasks")
}

func TestApp_TasksError(t *testing.T) {
	src := &fakeSource{tenant: &models.Tenant{Name: "acme"}, tasksErr: errors.New("boom")}
	a := New(src, 10)
	a.Update(a.fetchTenant()())
	a.Update(a.fetchTasks(false)())

	assert.Contains(t, a.View(), TasksLoadError)
}

func TestApp_Quit(t *testing.T) {
	a := New(&fakeSource{}, 10)

	_, cmd := a.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
