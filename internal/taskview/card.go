package taskview

import (
	"time"

	"github.com/fentz26/sailboard/internal/models"
)

// DefaultLauncher is shown when the API does not say who launched a task.
const DefaultLauncher = "System"

// NoTarget is shown for tasks without a named target.
const NoTarget = "No target"

// DisplayName picks the first non-empty of description, unique name and ID.
func DisplayName(task models.Task) string {
	if task.Description != nil && *task.Description != "" {
		return *task.Description
	}
	if task.UniqueName != nil && *task.UniqueName != "" {
		return *task.UniqueName
	}
	return task.ID
}

// LauncherName returns who launched the task, defaulting to DefaultLauncher.
func LauncherName(task models.Task) string {
	if task.Launcher == nil || *task.Launcher == "" {
		return DefaultLauncher
	}
	return *task.Launcher
}

// TargetName returns the target's name, or NoTarget.
func TargetName(task models.Task) string {
	if task.Target == nil || task.Target.Name == nil || *task.Target.Name == "" {
		return NoTarget
	}
	return *task.Target.Name
}

// Card is everything a presentation layer needs to draw one task row.
type Card struct {
	Task            models.Task `json:"task"`
	Kind            StatusKind  `json:"status_kind"`
	StatusLabel     string      `json:"status_label"`
	DisplayPercent  *int        `json:"display_percent,omitempty"`
	Name            string      `json:"name"`
	Launcher        string      `json:"launcher"`
	Target          string      `json:"target"`
	Metrics         []Metric    `json:"metrics,omitempty"`
	RelativeCreated string      `json:"relative_created"`
	Duration        string      `json:"duration"`
}

// NewCard derives the display record for a task. now anchors the
// relative creation date.
func NewCard(task models.Task, now time.Time) Card {
	return Card{
		Task:            task,
		Kind:            Classify(task.CompletionStatus),
		StatusLabel:     StatusLabel(task),
		DisplayPercent:  DisplayPercent(task),
		Name:            DisplayName(task),
		Launcher:        LauncherName(task),
		Target:          TargetName(task),
		Metrics:         SummarizeMetrics(task),
		RelativeCreated: FormatRelativeDate(task.Created, now),
		Duration:        FormatDuration(task.Launched, task.Completed),
	}
}

// Detail extends a Card with the expanded-panel content.
type Detail struct {
	Card
	Definition *models.TaskDefinitionSummary `json:"definition,omitempty"`
	Returns    ReturnSummary                 `json:"returns"`
	Messages   []string                      `json:"messages,omitempty"`
}

// NewDetail derives the expanded view of a task.
func NewDetail(task models.Task, now time.Time) Detail {
	return Detail{
		Card:       NewCard(task, now),
		Definition: task.TaskDefinitionSummary,
		Returns:    ReturnValues(task),
		Messages:   MessageTexts(task),
	}
}

// ExpandedSet tracks which task rows are expanded. The zero value is
// ready to use.
type ExpandedSet struct {
	ids map[string]bool
}

// Toggle flips the expanded state of a task and returns the new state.
func (s *ExpandedSet) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]bool)
	}
	s.ids[id] = !s.ids[id]
	return s.ids[id]
}

// IsExpanded reports whether a task row is expanded.
func (s *ExpandedSet) IsExpanded(id string) bool {
	return s.ids[id]
}

// Reset collapses every row.
func (s *ExpandedSet) Reset() {
	s.ids = nil
}
