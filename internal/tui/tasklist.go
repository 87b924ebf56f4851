package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/sailboard/internal/render"
	"github.com/fentz26/sailboard/internal/taskview"
)

var (
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	statusSuccess    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // Blue
	statusFailed     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	statusCancelled  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Grey
	statusWarning    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	statusInfo       = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

var statusIcons = map[taskview.StatusKind]string{
	taskview.KindInProgress: "◑",
	taskview.KindSuccess:    "●",
	taskview.KindPending:    "○",
	taskview.KindFailed:     "✗",
	taskview.KindCancelled:  "⊘",
	taskview.KindWarning:    "▲",
	taskview.KindInfo:       "i",
}

func statusStyle(kind taskview.StatusKind) lipgloss.Style {
	switch kind {
	case taskview.KindInProgress:
		return statusInProgress
	case taskview.KindSuccess:
		return statusSuccess
	case taskview.KindPending:
		return statusPending
	case taskview.KindFailed:
		return statusFailed
	case taskview.KindCancelled:
		return statusCancelled
	case taskview.KindWarning:
		return statusWarning
	default:
		return statusInfo
	}
}

// formatStatus renders the icon and label for a card.
func formatStatus(c taskview.Card) string {
	return statusStyle(c.Kind).Render(statusIcons[c.Kind] + " " + c.StatusLabel)
}

// renderRow draws the one-line summary of a card.
func renderRow(c taskview.Card, selected, expanded bool) string {
	marker := "▸"
	if expanded {
		marker = "▾"
	}

	meta := fmt.Sprintf("%s · %s · %s", render.Percent(c.DisplayPercent), c.RelativeCreated, c.Duration)
	line := fmt.Sprintf("%s %s  %s  %s", marker, formatStatus(c), truncate(c.Name, 48), mutedStyle.Render(meta))
	if selected {
		return selectedStyle.Render(line)
	}
	return taskItemStyle.Render(line)
}

// renderTaskList draws the cards of the current page, expanding those in
// expanded.
func renderTaskList(cards []taskview.Card, cursor int, expanded *taskview.ExpandedSet, detail func(taskview.Card) taskview.Detail) string {
	if len(cards) == 0 {
		return "\n  " + render.NoTasks + "\n"
	}

	var lines []string
	for i, c := range cards {
		open := expanded.IsExpanded(c.Task.ID)
		lines = append(lines, renderRow(c, i == cursor, open))
		if open {
			lines = append(lines, renderTaskDetail(detail(c)))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
