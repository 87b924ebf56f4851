package taskview

import "time"

// Listing is a derived page of task cards together with everything needed
// to draw the surrounding filter and pagination controls.
type Listing struct {
	Cards              []Card        `json:"cards"`
	Query              string        `json:"query"`
	Status             string        `json:"status,omitempty"`
	Page               int           `json:"page"`
	PageSize           int           `json:"page_size"`
	TotalPages         int           `json:"total_pages"`
	TotalFilteredCount int           `json:"total_filtered_count"`
	TotalCount         int           `json:"total_count"`
	StatusOptions      []string      `json:"status_options"`
	FilterChoices      []string      `json:"filter_choices"`
	Window             []PageControl `json:"window,omitempty"`
}

// Listing derives the current page as cards. now anchors relative dates.
func (vm *ViewModel) Listing(now time.Time) Listing {
	view := vm.Derive()

	cards := make([]Card, 0, len(view.VisibleTasks))
	for _, task := range view.VisibleTasks {
		cards = append(cards, NewCard(task, now))
	}

	return Listing{
		Cards:              cards,
		Query:              vm.state.Query,
		Status:             vm.state.Status,
		Page:               view.Page,
		PageSize:           vm.pageSize,
		TotalPages:         view.TotalPages,
		TotalFilteredCount: view.TotalFilteredCount,
		TotalCount:         len(vm.tasks),
		StatusOptions:      view.StatusOptions,
		FilterChoices:      FilterChoices(view.StatusOptions),
		Window:             view.Window,
	}
}
