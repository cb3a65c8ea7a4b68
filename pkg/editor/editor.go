// Package editor implements the modal line editor opened by the vim command.
// An Editor edits a copy of one file; the session writes the buffer back to
// the virtual file system when the editor asks for a save.
package editor

import (
	"strings"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// Mode is the editor's input mode.
type Mode int

const (
	Navigation Mode = iota
	Insertion
)

func (m Mode) String() string {
	if m == Insertion {
		return "insertion"
	}
	return "navigation"
}

// Action tells the session what to do after a key.
type Action int

const (
	ActionNone     Action = iota
	ActionSave            // write the buffer and keep editing
	ActionSaveQuit        // write the buffer and close
	ActionQuit            // close without writing
)

// DefaultMaxLines caps the buffer when no limit is configured.
const DefaultMaxLines = 5000

// Config holds what is needed to open an editor.
type Config struct {
	Path     virtualfs.Path
	Name     string // as typed by the user, shown in the status line
	Content  string
	MaxLines int
}

// Editor is a two-mode text editor bound to one file.
type Editor struct {
	lines    []string
	cursorX  int // column in runes
	cursorY  int // line index
	scrollY  int
	modified bool

	path     virtualfs.Path
	name     string
	maxLines int

	mode    Mode
	command string // pending colon-command, "" when not composing
	message string // one-shot status text, cleared by the next key
}

// New opens an editor on cfg.Content.
func New(cfg Config) *Editor {
	maxLines := cfg.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	e := &Editor{
		lines:    strings.Split(cfg.Content, "\n"),
		path:     cfg.Path,
		name:     cfg.Name,
		maxLines: maxLines,
	}
	logger.Debug(logger.AreaEditor, "Opened editor on %s (%d lines)", cfg.Path, len(e.lines))
	return e
}

// Text returns the buffer joined with newlines.
func (e *Editor) Text() string {
	return strings.Join(e.lines, "\n")
}

// SetText replaces the whole buffer. Only accepted in insertion mode.
func (e *Editor) SetText(content string) bool {
	if e.mode != Insertion {
		return false
	}
	lines := strings.Split(content, "\n")
	if len(lines) > e.maxLines {
		lines = lines[:e.maxLines]
	}
	e.lines = lines
	e.modified = true
	e.clampCursor()
	return true
}

func (e *Editor) Path() virtualfs.Path { return e.path }
func (e *Editor) Name() string         { return e.name }
func (e *Editor) Mode() Mode           { return e.mode }
func (e *Editor) Command() string      { return e.command }
func (e *Editor) Modified() bool       { return e.modified }
func (e *Editor) LineCount() int       { return len(e.lines) }

// Cursor returns the cursor as line and column.
func (e *Editor) Cursor() (line, col int) {
	return e.cursorY, e.cursorX
}

// MarkSaved clears the modified flag after the session stored the buffer.
func (e *Editor) MarkSaved() {
	e.modified = false
	e.message = `"` + e.name + `" written`
}
