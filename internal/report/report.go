// Package report renders a restructuring plan as readable terminal output.
// Rendering is presentation only; every number in it comes from the plan.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/kanmark/internal/places"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	bucketStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)
)

// maxTitleWidth keeps long course titles from wrapping the report.
const maxTitleWidth = 60

// Render formats the plan: where the bookmarks come from, which folders
// will be created or reused, and every planned move grouped by bucket.
func Render(plan *places.Plan) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Kanban restructuring plan"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Sources:"))
	b.WriteString("\n")
	for _, src := range plan.Sources {
		note := src.Path
		if src.Recursive {
			note += ", recursive"
		}
		if src.Completed {
			note += ", completed"
		}
		line := fmt.Sprintf("  %s (%s): %s", src.Label, note, plural(src.Count, "bookmark"))
		b.WriteString(itemStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Destination folders:"))
	b.WriteString("\n")
	for _, f := range plan.Folders {
		var line string
		switch {
		case f.Exists:
			line = fmt.Sprintf("  %s: exists (id=%d)", f.Title, f.NodeID)
		case f.Description != "":
			line = fmt.Sprintf("  %s: create at position %d (%s)", f.Title, f.Position, f.Description)
		default:
			line = fmt.Sprintf("  %s: create at position %d", f.Title, f.Position)
		}
		b.WriteString(itemStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, bucket := range places.Buckets() {
		moves := plan.MovesTo(bucket)

		heading := fmt.Sprintf("%s (%s", plan.FolderTitle(bucket), plural(len(moves), "item"))
		if bucket == places.BucketActive {
			heading += fmt.Sprintf(", WIP limit %d", plan.WIPLimit)
		}
		heading += "):"
		b.WriteString(bucketStyle.Render(heading))
		b.WriteString("\n")

		for _, m := range moves {
			visits := "unvisited"
			if m.LastVisit != 0 {
				visits = fmt.Sprintf("visits=%d", m.VisitCount)
			}
			line := fmt.Sprintf("  [%d] %s (%s)", m.Position, Truncate(m.Title, maxTitleWidth), visits)
			b.WriteString(itemStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(metaStyle.Render(fmt.Sprintf("%s planned.", plural(len(plan.Moves), "move"))))
	b.WriteString("\n")

	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
