package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/flivyn/flivynterm/pkg/logger"
)

// isPrintable reports whether key names a single printable character.
func isPrintable(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return unicode.IsPrint(r)
}

// HandleKey processes one key by its browser name ("a", "Enter",
// "ArrowLeft", ...) and returns what the session should do next.
func (e *Editor) HandleKey(key string) Action {
	e.message = ""

	var action Action
	switch {
	case e.mode == Insertion:
		e.handleInsertionKey(key)
	case e.command != "":
		action = e.handleCommandKey(key)
	default:
		e.handleNavigationKey(key)
	}
	e.clampCursor()
	return action
}

func (e *Editor) handleNavigationKey(key string) {
	switch key {
	case "i":
		e.mode = Insertion
		e.command = ""
	case "a":
		e.mode = Insertion
		e.moveCursor(1, 0)
	case "o":
		e.openLineBelow()
		e.mode = Insertion
	case ":":
		e.command = ":"
	case "x", "Delete":
		e.handleDelete()
	case "ArrowLeft", "h":
		e.moveCursor(-1, 0)
	case "ArrowRight", "l":
		e.moveCursor(1, 0)
	case "ArrowUp", "k":
		e.moveCursor(0, -1)
	case "ArrowDown", "j":
		e.moveCursor(0, 1)
	case "0", "Home":
		e.cursorX = 0
	case "$", "End":
		e.cursorX = e.lineLen(e.cursorY)
	}
}

// handleCommandKey edits or runs the pending colon-command.
func (e *Editor) handleCommandKey(key string) Action {
	switch key {
	case "Enter":
		cmd := e.command
		e.command = ""
		logger.Debug(logger.AreaEditor, "Editor command %q on %s", cmd, e.path)
		switch cmd {
		case ":wq", ":x":
			return ActionSaveQuit
		case ":q", ":q!":
			return ActionQuit
		case ":w":
			return ActionSave
		}
	case "Backspace":
		_, size := utf8.DecodeLastRuneInString(e.command)
		e.command = e.command[:len(e.command)-size]
	case "Escape":
		e.command = ""
	default:
		if isPrintable(key) {
			e.command += key
		}
	}
	return ActionNone
}

func (e *Editor) handleInsertionKey(key string) {
	switch key {
	case "Escape":
		e.mode = Navigation
	case "Enter":
		e.handleEnter()
	case "Backspace":
		e.handleBackspace()
	case "Delete":
		e.handleDelete()
	case "Tab":
		e.handleInsertText("\t")
	case "ArrowLeft":
		e.moveCursor(-1, 0)
	case "ArrowRight":
		e.moveCursor(1, 0)
	case "ArrowUp":
		e.moveCursor(0, -1)
	case "ArrowDown":
		e.moveCursor(0, 1)
	case "Home":
		e.cursorX = 0
	case "End":
		e.cursorX = e.lineLen(e.cursorY)
	default:
		if isPrintable(key) {
			e.handleInsertText(key)
		}
	}
}
