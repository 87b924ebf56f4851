package taskview

import (
	"strconv"

	"github.com/fentz26/sailboard/internal/models"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// TotalPages returns ceil(count/pageSize), or 0 when there is nothing
// to page.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Page is one page of an already-filtered task slice.
type Page struct {
	Tasks      []models.Task
	Number     int
	TotalPages int
	TotalCount int
}

// Paginate returns the tasks in [(page-1)*pageSize, page*pageSize).
// The page is not clamped: a page beyond the last yields no tasks.
func Paginate(tasks []models.Task, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	result := Page{
		Tasks:      []models.Task{},
		Number:     page,
		TotalPages: TotalPages(len(tasks), pageSize),
		TotalCount: len(tasks),
	}

	start := (page - 1) * pageSize
	if page < 1 || start >= len(tasks) {
		return result
	}
	end := start + pageSize
	if end > len(tasks) {
		end = len(tasks)
	}
	result.Tasks = tasks[start:end]
	return result
}

// ClampPage bounds page to [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	upper := totalPages
	if upper < 1 {
		upper = 1
	}
	if page > upper {
		page = upper
	}
	if page < 1 {
		page = 1
	}
	return page
}

// ShowPagination reports whether a page strip should be drawn at all.
func ShowPagination(totalPages int) bool {
	return totalPages > 1
}

// ControlKind identifies one element of the pagination strip.
type ControlKind string

const (
	ControlPrevious ControlKind = "previous"
	ControlPage     ControlKind = "page"
	ControlEllipsis ControlKind = "ellipsis"
	ControlNext     ControlKind = "next"
)

// PageControl is one clickable (or inert) element of the pagination strip.
// Page is the page a click navigates to; it is 0 for ellipses.
type PageControl struct {
	Kind     ControlKind `json:"kind"`
	Page     int         `json:"page,omitempty"`
	Active   bool        `json:"active,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
}

// Label is the text drawn for the control.
func (c PageControl) Label() string {
	switch c.Kind {
	case ControlPrevious:
		return "‹ Prev"
	case ControlNext:
		return "Next ›"
	case ControlEllipsis:
		return "..."
	default:
		return strconv.Itoa(c.Page)
	}
}

// PageWindow builds the pagination strip for page current of total:
//
//	prev [1] [...] [C-1] (C) [C+1] [...] [T] next
//
// Previous and next are always present and disabled at the edges. The
// first page shows when C > 2, the leading ellipsis when C > 3, the
// trailing ellipsis when C < T-2 and the last page when C < T-1.
func PageWindow(current, total int) []PageControl {
	controls := make([]PageControl, 0, 9)

	controls = append(controls, PageControl{
		Kind:     ControlPrevious,
		Page:     current - 1,
		Disabled: current <= 1,
	})

	if current > 2 {
		controls = append(controls, PageControl{Kind: ControlPage, Page: 1})
	}
	if current > 3 {
		controls = append(controls, PageControl{Kind: ControlEllipsis})
	}
	if current > 1 {
		controls = append(controls, PageControl{Kind: ControlPage, Page: current - 1})
	}

	controls = append(controls, PageControl{Kind: ControlPage, Page: current, Active: true})

	if current < total {
		controls = append(controls, PageControl{Kind: ControlPage, Page: current + 1})
	}
	if current < total-2 {
		controls = append(controls, PageControl{Kind: ControlEllipsis})
	}
	if current < total-1 {
		controls = append(controls, PageControl{Kind: ControlPage, Page: total})
	}

	controls = append(controls, PageControl{
		Kind:     ControlNext,
		Page:     current + 1,
		Disabled: current >= total,
	})

	return controls
}
