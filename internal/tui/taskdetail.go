package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/sailboard/internal/taskview"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				MarginLeft(4).
				Padding(0, 1)
)

// renderTaskDetail draws the expanded panel under a task row.
func renderTaskDetail(d taskview.Detail) string {
	var b strings.Builder

	b.WriteString(renderField("ID", d.Task.ID))
	b.WriteString(renderField("Target", d.Target))
	b.WriteString(renderField("Launcher", d.Launcher))
	b.WriteString(renderField("Created", d.RelativeCreated))
	b.WriteString(renderField("Duration", d.Duration))
	for _, m := range d.Metrics {
		b.WriteString(renderField(m.Label, m.Value))
	}

	if def := d.Definition; def != nil {
		b.WriteString(sectionStyle.Render("Task Definition") + "\n")
		b.WriteString(renderField("  Name", def.UniqueName))
		if def.Description != nil && *def.Description != "" {
			b.WriteString(renderField("  Description", *def.Description))
		}
		if def.Executor != nil && *def.Executor != "" {
			b.WriteString(renderField("  Executor", *def.Executor))
		}
	}

	if len(d.Returns.Values) > 0 {
		b.WriteString(sectionStyle.Render("Return Values") + "\n")
		for _, v := range d.Returns.Values {
			b.WriteString(renderField("  "+v.Name, v.Value))
		}
		if d.Returns.More > 0 {
			b.WriteString(labelStyle.Render(fmt.Sprintf("  And %d more...", d.Returns.More)) + "\n")
		}
	}

	if len(d.Messages) > 0 {
		b.WriteString(sectionStyle.Render("Messages") + "\n")
		for _, m := range d.Messages {
			b.WriteString(fmt.Sprintf("  • %s\n", truncate(m, 100)))
		}
	}

	return detailPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
