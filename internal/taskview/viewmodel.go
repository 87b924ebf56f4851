package taskview

import "github.com/fentz26/sailboard/internal/models"

// FilterState is the user-controlled input to a derived view.
// Status is empty when no status filter is selected.
type FilterState struct {
	Query  string `json:"query"`
	Status string `json:"status,omitempty"`
	Page   int    `json:"page"`
}

// DefaultFilterState is the state after a collection is (re)loaded.
func DefaultFilterState() FilterState {
	return FilterState{Page: 1}
}

// View is the derived, display-ready projection of a task collection.
type View struct {
	VisibleTasks       []models.Task `json:"visible_tasks"`
	TotalFilteredCount int           `json:"total_filtered_count"`
	TotalPages         int           `json:"total_pages"`
	Page               int           `json:"page"`
	StatusOptions      []string      `json:"status_options"`
	Window             []PageControl `json:"window,omitempty"`
}

// Derive filters, then paginates tasks according to state. The page in
// state is used as given; ViewModel keeps it in range.
func Derive(tasks []models.Task, state FilterState, pageSize int) View {
	filtered := Filter(tasks, state.Query, state.Status)
	page := Paginate(filtered, state.Page, pageSize)

	view := View{
		VisibleTasks:       page.Tasks,
		TotalFilteredCount: page.TotalCount,
		TotalPages:         page.TotalPages,
		Page:               state.Page,
		StatusOptions:      StatusOptions(tasks),
	}
	if ShowPagination(page.TotalPages) {
		view.Window = PageWindow(state.Page, page.TotalPages)
	}
	return view
}

// ViewModel owns a fetched task collection and the filter state applied
// to it. It is not safe for concurrent use.
type ViewModel struct {
	tasks    []models.Task
	state    FilterState
	pageSize int
}

// NewViewModel creates an empty view-model. A non-positive pageSize
// selects DefaultPageSize.
func NewViewModel(pageSize int) *ViewModel {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ViewModel{
		state:    DefaultFilterState(),
		pageSize: pageSize,
	}
}

// Load replaces the task collection and resets the filter state.
func (vm *ViewModel) Load(tasks []models.Task) {
	vm.tasks = append([]models.Task(nil), tasks...)
	vm.state = DefaultFilterState()
}

// Tasks returns the raw collection.
func (vm *ViewModel) Tasks() []models.Task {
	return vm.tasks
}

// State returns the current filter state.
func (vm *ViewModel) State() FilterState {
	return vm.state
}

// PageSize returns the number of tasks per page.
func (vm *ViewModel) PageSize() int {
	return vm.pageSize
}

// SetQuery changes the search text and pulls the page back into range.
func (vm *ViewModel) SetQuery(query string) {
	vm.state.Query = query
	vm.clamp()
}

// SetStatusFilter changes the status filter ("" clears it) and pulls the
// page back into range.
func (vm *ViewModel) SetStatusFilter(status string) {
	vm.state.Status = status
	vm.clamp()
}

// SetPage moves to page, bounded to the available pages.
func (vm *ViewModel) SetPage(page int) {
	vm.state.Page = page
	vm.clamp()
}

// NextPage advances one page if there is one.
func (vm *ViewModel) NextPage() {
	vm.SetPage(vm.state.Page + 1)
}

// PrevPage goes back one page if there is one.
func (vm *ViewModel) PrevPage() {
	vm.SetPage(vm.state.Page - 1)
}

// Apply replaces the whole filter state, clamping the page.
func (vm *ViewModel) Apply(state FilterState) {
	vm.state = state
	vm.clamp()
}

// Derive computes the current view.
func (vm *ViewModel) Derive() View {
	return Derive(vm.tasks, vm.state, vm.pageSize)
}

func (vm *ViewModel) clamp() {
	filtered := Filter(vm.tasks, vm.state.Query, vm.state.Status)
	vm.state.Page = ClampPage(vm.state.Page, TotalPages(len(filtered), vm.pageSize))
}
