package tui

import (
	"fmt"
	"strings"

	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/theme"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title  lipgloss.Style
	text   lipgloss.Style
	prompt lipgloss.Style
	path   lipgloss.Style
	dir    lipgloss.Style
	accent lipgloss.Style
	cursor lipgloss.Style
	status lipgloss.Style
	err    lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	text := lipgloss.Color(p.TextColor)
	back := lipgloss.Color(p.BackColor)
	return styles{
		title:  lipgloss.NewStyle().Foreground(text).Background(lipgloss.Color(p.ScrollbarThumb)).Bold(true),
		text:   lipgloss.NewStyle().Foreground(text),
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(p.PromptColor)).Bold(true),
		path:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.PathColor)),
		dir:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.PathColor)).Bold(true),
		accent: lipgloss.NewStyle().Foreground(lipgloss.Color(p.AccentColor)).Bold(true),
		cursor: lipgloss.NewStyle().Foreground(back).Background(text),
		status: lipgloss.NewStyle().Foreground(text).Background(lipgloss.Color(p.ScrollbarTrack)),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s styles) span(sp shared.Span) string {
	switch sp.Style {
	case shared.StylePrompt:
		return s.prompt.Render(sp.Text)
	case shared.StylePath:
		return s.path.Render(sp.Text)
	case shared.StyleDir:
		return s.dir.Render(sp.Text)
	case shared.StyleAccent:
		return s.accent.Render(sp.Text)
	}
	return s.text.Render(sp.Text)
}

func (s styles) line(l shared.Line) string {
	var b strings.Builder
	for _, sp := range l.Spans {
		b.WriteString(s.span(sp))
	}
	return b.String()
}

func (m *Model) transcriptContent() string {
	rendered := make([]string, len(m.lines))
	for i, l := range m.lines {
		rendered[i] = m.styles.line(l)
	}
	return strings.Join(rendered, "\n")
}

func (m *Model) titleBar() string {
	title := fmt.Sprintf(" FlivynTerm [%s]", m.palette.Name)
	if m.admin {
		title += " admin"
	}
	return m.styles.title.Width(m.width).Render(title)
}

func (m *Model) promptView() string {
	if !m.inputEnabled {
		return ""
	}
	return m.styles.line(m.prompt) + m.styles.text.Render(m.input) + m.styles.cursor.Render(" ")
}

// editorView shows the buffer around the cursor and a status bar.
func (m *Model) editorView() string {
	f := m.editor
	rows := m.height - 2
	if rows < 1 {
		rows = 1
	}
	lines := strings.Split(f.EditorData, "\n")

	top := 0
	if f.CursorLine >= rows {
		top = f.CursorLine - rows + 1
	}

	var b strings.Builder
	for y := top; y < top+rows; y++ {
		switch {
		case y >= len(lines):
			b.WriteString(m.styles.path.Render("~"))
		case y == f.CursorLine:
			b.WriteString(m.withCursor(lines[y], f.CursorCol))
		default:
			b.WriteString(m.styles.text.Render(lines[y]))
		}
		b.WriteByte('\n')
	}

	left, right := f.EditorStatus, f.EditorCmd
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(m.styles.status.Render(left + strings.Repeat(" ", gap) + right))
	return b.String()
}

func (m *Model) withCursor(line string, col int) string {
	runes := []rune(line)
	if col >= len(runes) {
		return m.styles.text.Render(line) + m.styles.cursor.Render(" ")
	}
	return m.styles.text.Render(string(runes[:col])) +
		m.styles.cursor.Render(string(runes[col])) +
		m.styles.text.Render(string(runes[col+1:]))
}

func (m *Model) gameView() string {
	f := m.game
	var b strings.Builder
	for _, row := range f.Grid {
		b.WriteString(m.styles.accent.Render(row))
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.text.Render(fmt.Sprintf("Score: %d", f.Score)))
	if f.GameOver {
		b.WriteString("  " + m.styles.err.Render("GAME OVER"))
	}
	b.WriteByte('\n')
	b.WriteString(m.styles.path.Render(f.Content))
	return b.String()
}
