// Package taskview derives display-ready views over a fetched page of
// task-status records: local search and status filtering, local
// pagination, status classification, metric summaries and date
// formatting.
//
// Everything in this package is a pure function of its inputs. Nothing
// here performs I/O or mutates the task collection it is handed.
package taskview

import (
	"strings"

	"github.com/fentz26/sailboard/internal/models"
)

// InProgress is the synthetic status shown for tasks without a
// completion status. It is never a stored value.
const InProgress = "In Progress"

// StatusKind buckets a completion status into the icon family used to
// render it.
type StatusKind string

const (
	KindInProgress StatusKind = "in_progress"
	KindSuccess    StatusKind = "success"
	KindPending    StatusKind = "pending"
	KindFailed     StatusKind = "failed"
	KindCancelled  StatusKind = "cancelled"
	KindWarning    StatusKind = "warning"
	KindInfo       StatusKind = "info"
)

// IsInProgress reports whether the task has no completion status.
// An empty string counts as absent.
func IsInProgress(task models.Task) bool {
	return task.CompletionStatus == nil || *task.CompletionStatus == ""
}

// Classify maps a completion status to its StatusKind. Comparison is
// case-insensitive; an absent status is always KindInProgress.
func Classify(status *string) StatusKind {
	if status == nil || *status == "" {
		return KindInProgress
	}

	switch strings.ToLower(*status) {
	case "success":
		return KindSuccess
	case "pending", "in progress":
		return KindPending
	case "error", "failed":
		return KindFailed
	case "cancelled", "terminated":
		return KindCancelled
	case "warning":
		return KindWarning
	default:
		return KindInfo
	}
}

// StatusLabel returns the stored completion status with its case
// preserved, or InProgress when there is none.
func StatusLabel(task models.Task) string {
	if IsInProgress(task) {
		return InProgress
	}
	return *task.CompletionStatus
}

// DisplayPercent returns the percent-complete value to show.
//
// The API reports 0 on some terminal paths, so a 0 paired with a
// terminal status is shown as 100. The stored value is left untouched.
func DisplayPercent(task models.Task) *int {
	if task.PercentComplete == nil {
		return nil
	}

	percent := *task.PercentComplete
	if percent == 0 && !IsInProgress(task) && !strings.EqualFold(*task.CompletionStatus, InProgress) {
		percent = 100
	}
	return &percent
}

// StatusOptions returns the distinct non-empty completion statuses in
// the order they first appear.
func StatusOptions(tasks []models.Task) []string {
	seen := make(map[string]bool)
	options := make([]string, 0)
	for _, task := range tasks {
		if IsInProgress(task) {
			continue
		}
		status := *task.CompletionStatus
		if seen[status] {
			continue
		}
		seen[status] = true
		options = append(options, status)
	}
	return options
}

// FilterChoices returns the selectable status filters: the synthetic
// InProgress option first, followed by options.
func FilterChoices(options []string) []string {
	choices := make([]string, 0, len(options)+1)
	choices = append(choices, InProgress)
	for _, option := range options {
		if option == InProgress {
			continue
		}
		choices = append(choices, option)
	}
	return choices
}
