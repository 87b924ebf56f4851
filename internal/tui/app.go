// Package tui provides the interactive terminal dashboard for sailboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/render"
	"github.com/fentz26/sailboard/internal/taskview"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#0033A1")
	accentColor  = lipgloss.Color("#CC27B0")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor).
			Background(primaryColor).
			Padding(0, 1)

	filterStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accentColor)
)

// Error messages shown in place of the page when a load fails.
const (
	TenantLoadError = "Failed to load tenant information"
	TasksLoadError  = "Failed to load tasks"
)

// FetchTimeout bounds each call to the source.
const FetchTimeout = 30 * time.Second

// App is the main TUI application model.
type App struct {
	source    Source
	vm        *taskview.ViewModel
	expanded  taskview.ExpandedSet
	keys      keyMap
	help      help.Model
	search    textinput.Model
	searching bool
	statusIdx int // 0 is "all"; i > 0 selects FilterChoices[i-1]
	cursor    int
	tenant    *models.Tenant
	tenantErr error
	tasksErr  error
	loading   bool
	width     int
	height    int
	now       func() time.Time
}

// New creates a TUI over source showing pageSize tasks per page.
func New(source Source, pageSize int) *App {
	ti := textinput.New()
	ti.Placeholder = "search name, description or target"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 60

	return &App{
		source:  source,
		vm:      taskview.NewViewModel(pageSize),
		keys:    defaultKeyMap(),
		help:    help.New(),
		search:  ti,
		loading: true,
		now:     time.Now,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.fetchTenant(),
		a.fetchTasks(false),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.search.Width = max(msg.Width-8, 10)
		return a, nil

	case tenantLoadedMsg:
		a.tenant, a.tenantErr = msg.tenant, msg.err
		return a, nil

	case tasksLoadedMsg:
		a.loading = false
		a.tasksErr = msg.err
		if msg.err == nil {
			a.load(msg.tasks)
		}
		return a, nil

	case tea.KeyMsg:
		if a.searching {
			return a, a.updateSearch(msg)
		}
		return a, a.handleKey(msg)
	}

	return a, nil
}

// load replaces the collection. The view-model resets its filter state on
// load, so the inputs mirroring it are reset too.
func (a *App) load(tasks []models.Task) {
	a.vm.Load(tasks)
	a.expanded.Reset()
	a.search.SetValue("")
	a.statusIdx = 0
	a.cursor = 0
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	listing := a.listing()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		return a.search.Focus()

	case key.Matches(msg, a.keys.Status):
		choices := listing.FilterChoices
		a.statusIdx = (a.statusIdx + 1) % (len(choices) + 1)
		status := ""
		if a.statusIdx > 0 {
			status = choices[a.statusIdx-1]
		}
		a.vm.SetStatusFilter(status)
		a.cursor = 0

	case key.Matches(msg, a.keys.Clear):
		a.search.SetValue("")
		a.statusIdx = 0
		a.vm.Apply(taskview.DefaultFilterState())
		a.cursor = 0

	case key.Matches(msg, a.keys.NextPage):
		a.vm.NextPage()
		a.cursor = 0

	case key.Matches(msg, a.keys.PrevPage):
		a.vm.PrevPage()
		a.cursor = 0

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(listing.Cards)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Toggle):
		if a.cursor < len(listing.Cards) {
			a.expanded.Toggle(listing.Cards[a.cursor].Task.ID)
		}

	case key.Matches(msg, a.keys.Refresh):
		a.loading = true
		return a.fetchTasks(true)

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return nil
}

// updateSearch feeds keys to the search box, applying the query as it is
// typed. Enter and esc leave the box; esc also clears it.
func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		return nil
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.vm.SetQuery("")
		a.cursor = 0
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != a.vm.State().Query {
		a.vm.SetQuery(a.search.Value())
		a.cursor = 0
	}
	return cmd
}

func (a *App) listing() taskview.Listing {
	return a.vm.Listing(a.now())
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader() + "\n")
	if a.tenantErr != nil {
		b.WriteString(errorStyle.Render(TenantLoadError) + "  ")
		b.WriteString(mutedStyle.Render(a.tenantErr.Error()) + "\n")
	}

	listing := a.listing()
	b.WriteString(a.renderFilters(listing) + "\n\n")

	switch {
	case a.tasksErr != nil:
		b.WriteString(errorStyle.Render(TasksLoadError) + "\n")
		b.WriteString(mutedStyle.Render(a.tasksErr.Error()) + "\n")
	case a.loading && len(a.vm.Tasks()) == 0:
		b.WriteString("  Loading tasks...\n")
	default:
		now := a.now()
		b.WriteString(renderTaskList(listing.Cards, a.cursor, &a.expanded, func(c taskview.Card) taskview.Detail {
			return taskview.NewDetail(c.Task, now)
		}))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(render.Summary(listing)))
		if strip := render.PageStrip(listing.Window); strip != "" {
			b.WriteString("   " + strip)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + a.help.View(a.keys))
	return b.String()
}

func (a *App) renderHeader() string {
	if a.tenant == nil {
		return titleStyle.Render("sailboard")
	}

	name := a.tenant.FullName
	if name == "" {
		name = a.tenant.Name
	}
	header := titleStyle.Render(name)
	header += "  " + filterStyle.Render(render.OrgType(*a.tenant))
	if a.tenant.Pod != "" {
		header += "  " + mutedStyle.Render(a.tenant.Pod)
	}
	if a.loading {
		header += "  " + mutedStyle.Render("refreshing...")
	}
	return header
}

func (a *App) renderFilters(l taskview.Listing) string {
	search := a.search.View()
	if !a.searching {
		query := l.Query
		if query == "" {
			query = mutedStyle.Render("(none)")
		}
		search = "Search: " + query
	}

	status := "All"
	if l.Status != "" {
		status = l.Status
	}
	return fmt.Sprintf("%s   Status: %s", search, filterStyle.Render(status))
}

type tenantLoadedMsg struct {
	tenant *models.Tenant
	err    error
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

func (a *App) fetchTenant() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
		defer cancel()
		tenant, err := a.source.Tenant(ctx)
		return tenantLoadedMsg{tenant, err}
	}
}

func (a *App) fetchTasks(refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
		defer cancel()
		tasks, err := a.source.Tasks(ctx, refresh)
		return tasksLoadedMsg{tasks, err}
	}
}
