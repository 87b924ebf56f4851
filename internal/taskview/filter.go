package taskview

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/fentz26/sailboard/internal/models"
)

// MatchesSearch reports whether the task matches a free-text query.
// An empty query matches everything. Otherwise the query is matched as
// a case-insensitive substring of the description, unique name, ID or
// target name; absent fields never match. Both sides are NFC-normalized
// and lowercased. Only case is ignored: "ß" does not match "ss".
func MatchesSearch(task models.Task, query string) bool {
	if query == "" {
		return true
	}

	// Casers are stateful; one per call.
	lower := cases.Lower(language.Und)
	needle := lowerString(lower, query)
	contains := func(value *string) bool {
		return value != nil && strings.Contains(lowerString(lower, *value), needle)
	}

	if contains(task.Description) || contains(task.UniqueName) || contains(&task.ID) {
		return true
	}
	return task.Target != nil && contains(task.Target.Name)
}

func lowerString(c cases.Caser, s string) string {
	return c.String(norm.NFC.String(s))
}

// MatchesStatus reports whether the task passes the status filter.
//
// An empty filter matches everything and InProgress matches tasks with
// no completion status. Any other filter requires exact, case-sensitive
// equality; unlike Classify this comparison does not fold case.
func MatchesStatus(task models.Task, statusFilter string) bool {
	if statusFilter == "" {
		return true
	}
	if statusFilter == InProgress {
		return IsInProgress(task)
	}
	return task.CompletionStatus != nil && *task.CompletionStatus == statusFilter
}

// Filter returns the tasks that pass both the search and the status
// filter, preserving input order.
func Filter(tasks []models.Task, query, statusFilter string) []models.Task {
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if MatchesSearch(task, query) && MatchesStatus(task, statusFilter) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}
