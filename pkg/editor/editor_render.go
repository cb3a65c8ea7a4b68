package editor

import (
	"strconv"

	"github.com/flivyn/flivynterm/pkg/shared"
)

// StatusLeft is the mode indicator.
func (e *Editor) StatusLeft() string {
	if e.mode == Insertion {
		return "-- INSERT --"
	}
	return ""
}

// StatusRight shows the pending command, a one-shot message or the file
// name with its line count.
func (e *Editor) StatusRight() string {
	if e.command != "" {
		return e.command
	}
	if e.message != "" {
		return e.message
	}
	return `"` + e.name + `" ` + strconv.Itoa(len(e.lines)) + "L"
}

// View returns at most rows buffer lines, scrolled so the cursor is visible,
// and the index of the first one.
func (e *Editor) View(rows int) ([]string, int) {
	e.adjustScroll(rows)
	end := e.scrollY + rows
	if rows <= 0 || end > len(e.lines) {
		end = len(e.lines)
	}
	return e.lines[e.scrollY:end], e.scrollY
}

// Frame builds the message that paints the editor on the client.
func (e *Editor) Frame() shared.Message {
	return shared.Message{
		Type:         shared.MessageTypeEditor,
		EditorData:   e.Text(),
		EditorFile:   e.name,
		EditorMode:   e.mode.String(),
		EditorStatus: e.StatusLeft(),
		EditorCmd:    e.StatusRight(),
		CursorLine:   e.cursorY,
		CursorCol:    e.cursorX,
		EditorMod:    e.modified,
	}
}
