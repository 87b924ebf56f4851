// Package render formats tenants and task listings as terminal text for
// the sailboard CLI.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/sailboard/internal/taskview"
)

// NoTasks is printed in place of an empty listing.
const NoTasks = "No tasks found"

// Renderer writes formatted output to w. With color disabled the output
// is plain ASCII apart from the pagination arrows.
type Renderer struct {
	w      io.Writer
	color  bool
	styles styles
}

type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	status map[taskview.StatusKind]lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		status: map[taskview.StatusKind]lipgloss.Style{
			taskview.KindInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			taskview.KindSuccess:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			taskview.KindPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			taskview.KindFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			taskview.KindCancelled:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			taskview.KindWarning:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			taskview.KindInfo:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		},
	}
}

// New creates a renderer.
func New(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color, styles: defaultStyles()}
}

func (r *Renderer) title(s string) string {
	if !r.color {
		return s
	}
	return r.styles.title.Render(s)
}

func (r *Renderer) muted(s string) string {
	if !r.color {
		return s
	}
	return r.styles.muted.Render(s)
}

func (r *Renderer) status(kind taskview.StatusKind, s string) string {
	if !r.color {
		return s
	}
	return r.styles.status[kind].Render(s)
}

// Tasks writes a task table followed by a summary line and, when there is
// more than one page, the page strip.
func (r *Renderer) Tasks(l taskview.Listing) error {
	if len(l.Cards) == 0 {
		_, err := fmt.Fprintln(r.w, NoTasks)
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tNAME\tTARGET\tLAUNCHER\tCREATED\tDURATION")
	for _, c := range l.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(c.Task.ID),
			c.StatusLabel,
			Percent(c.DisplayPercent),
			truncate(c.Name, 40),
			truncate(c.Target, 24),
			c.Launcher,
			c.RelativeCreated,
			c.Duration,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, r.muted(Summary(l)))
	if strip := PageStrip(l.Window); strip != "" {
		fmt.Fprintln(r.w, strip)
	}
	return nil
}

// Detail writes the expanded view of one task.
func (r *Renderer) Detail(d taskview.Detail) error {
	w := r.w
	fmt.Fprintln(w, r.title(d.Name))
	fmt.Fprintln(w)

	status := d.StatusLabel
	if d.DisplayPercent != nil {
		status += " (" + Percent(d.DisplayPercent) + ")"
	}
	field(w, "ID", d.Task.ID)
	field(w, "Status", r.status(d.Kind, status))
	if d.Task.Type != nil && *d.Task.Type != "" {
		field(w, "Type", *d.Task.Type)
	}
	field(w, "Target", d.Target)
	field(w, "Launcher", d.Launcher)
	field(w, "Created", d.RelativeCreated)
	field(w, "Duration", d.Duration)

	if len(d.Metrics) > 0 {
		parts := make([]string, 0, len(d.Metrics))
		for _, m := range d.Metrics {
			parts = append(parts, m.Label+": "+m.Value)
		}
		field(w, "Metrics", strings.Join(parts, ", "))
	}

	if def := d.Definition; def != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.title("Task Definition"))
		fmt.Fprintf(w, "  Name: %s\n", def.UniqueName)
		if def.Description != nil && *def.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", *def.Description)
		}
		if def.Executor != nil && *def.Executor != "" {
			fmt.Fprintf(w, "  Executor: %s\n", *def.Executor)
		}
	}

	if len(d.Returns.Values) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.title("Return Values"))
		for _, v := range d.Returns.Values {
			fmt.Fprintf(w, "  %s: %s\n", v.Name, v.Value)
		}
		if d.Returns.More > 0 {
			fmt.Fprintf(w, "  And %d more...\n", d.Returns.More)
		}
	}

	if len(d.Messages) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.title("Messages"))
		for _, m := range d.Messages {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
	return nil
}

// Summary describes the listing's counts, e.g. "Showing 10 of 25 tasks
// (page 1 of 3)".
func Summary(l taskview.Listing) string {
	s := fmt.Sprintf("Showing %d of %d tasks", len(l.Cards), l.TotalFilteredCount)
	if l.TotalFilteredCount != l.TotalCount {
		s += fmt.Sprintf(" (%d fetched)", l.TotalCount)
	}
	if l.TotalPages > 0 {
		s += fmt.Sprintf(", page %d of %d", l.Page, l.TotalPages)
	}
	return s
}

// PageStrip draws the pagination controls on one line. The active page is
// bracketed and disabled controls are omitted. It returns "" for an empty
// window.
func PageStrip(window []taskview.PageControl) string {
	parts := make([]string, 0, len(window))
	for _, c := range window {
		if c.Disabled {
			continue
		}
		label := c.Label()
		if c.Active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

// Percent formats a display percentage, or "-" when unknown.
func Percent(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *p)
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-10s%s\n", label+":", value)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
