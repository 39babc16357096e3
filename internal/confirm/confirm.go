// Package confirm shows the planned kanban board as a three-column TUI and
// asks for a decision before anything is written to the database.
package confirm

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/report"
)

// Model is the confirmation board for one plan.
type Model struct {
	plan      *places.Plan
	moves     []places.Move // flattened in bucket order, addressed by cursor
	keys      KeyMap
	styles    Styles
	cursor    int
	confirmed bool
	declined  bool
	notice    string
	width     int
	height    int
}

// New creates a confirmation board for the given plan.
func New(plan *places.Plan) Model {
	var moves []places.Move
	for _, b := range places.Buckets() {
		moves = append(moves, plan.MovesTo(b)...)
	}

	return Model{
		plan:   plan,
		moves:  moves,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
		width:  100,
		height: 30,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Decline):
			m.declined = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.moves)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.CopyURL):
			if len(m.moves) == 0 {
				return m, nil
			}
			url := m.moves[m.cursor].URL
			if err := clipboard.WriteAll(url); err != nil {
				m.notice = "clipboard unavailable"
			} else {
				m.notice = "copied " + report.Truncate(url, 50)
			}
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Restructuring preview"))
	b.WriteString("\n\n")

	colWidth := m.columnWidth()
	columns := make([]string, 0, 3)
	offset := 0
	for _, bucket := range places.Buckets() {
		moves := m.plan.MovesTo(bucket)
		columns = append(columns, m.renderColumn(bucket, moves, offset, colWidth))
		offset += len(moves)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")

	if len(m.moves) > 0 {
		b.WriteString(m.styles.URL.Render(report.Truncate(m.moves[m.cursor].URL, m.width-2)))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.URL.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderColumn(bucket places.Bucket, moves []places.Move, offset, width int) string {
	heading := fmt.Sprintf("%s (%d)", m.plan.FolderTitle(bucket), len(moves))
	if bucket == places.BucketActive {
		heading = fmt.Sprintf("%s (%d/%d)", m.plan.FolderTitle(bucket), len(moves), m.plan.WIPLimit)
	}

	lines := []string{m.styles.ColumnTitle.Render(report.Truncate(heading, width))}

	if len(moves) == 0 {
		lines = append(lines, m.styles.Empty.Render("(empty)"))
	}
	for i, mv := range moves {
		label := report.Truncate(fmt.Sprintf("%d. %s", mv.Position, mv.Title), width)
		if offset+i == m.cursor {
			lines = append(lines, m.styles.ItemSelected.Render(label))
		} else {
			lines = append(lines, m.styles.Item.Render(label))
		}
	}

	return m.styles.Column.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	hints := []struct{ key, desc string }{
		{"j/k", "move"},
		{"c", "copy url"},
		{"y", "apply"},
		{"n", "cancel"},
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = m.styles.HintKey.Render(h.key) + " " + m.styles.HintDesc.Render(h.desc)
	}
	return m.styles.Help.Render(strings.Join(parts, "  "))
}

func (m Model) columnWidth() int {
	w := m.width/3 - 4
	if w < 20 {
		w = 20
	}
	return w
}

// Confirmed reports whether the user chose to apply the plan.
func (m Model) Confirmed() bool {
	return m.confirmed
}

// Declined reports whether the user chose to leave the database unchanged.
func (m Model) Declined() bool {
	return m.declined
}

// Run shows the board and blocks until the user decides. It returns true
// only on explicit confirmation; closing the program any other way counts
// as a decline.
func Run(plan *places.Plan) (bool, error) {
	p := tea.NewProgram(New(plan), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Confirmed(), nil
}
