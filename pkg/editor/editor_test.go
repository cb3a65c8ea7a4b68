package editor

import (
	"testing"

	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

func newTestEditor(content string) *Editor {
	return New(Config{Path: virtualfs.Path{"notes.txt"}, Name: "notes.txt", Content: content})
}

func keys(e *Editor, ks ...string) Action {
	var last Action
	for _, k := range ks {
		last = e.HandleKey(k)
	}
	return last
}

func TestStartsInNavigation(t *testing.T) {
	e := newTestEditor("a\nb")
	if e.Mode() != Navigation {
		t.Fatalf("mode = %v", e.Mode())
	}
	if got := e.StatusRight(); got != `"notes.txt" 2L` {
		t.Errorf("status = %q", got)
	}
	if e.StatusLeft() != "" {
		t.Errorf("left status in navigation = %q", e.StatusLeft())
	}

	// Printable keys in navigation do not edit.
	keys(e, "z", "q")
	if e.Text() != "a\nb" || e.Modified() {
		t.Errorf("navigation keys edited the buffer: %q", e.Text())
	}
}

func TestInsertAndEscape(t *testing.T) {
	e := newTestEditor("")
	keys(e, "i")
	if e.Mode() != Insertion || e.StatusLeft() != "-- INSERT --" {
		t.Fatalf("mode = %v status = %q", e.Mode(), e.StatusLeft())
	}
	keys(e, "h", "i", "Enter", "t", "h", "e", "r", "e", "Tab", "!")
	if got, want := e.Text(), "hi\nthere\t!"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	keys(e, "Escape")
	if e.Mode() != Navigation {
		t.Errorf("Escape left mode %v", e.Mode())
	}
	if !e.Modified() {
		t.Error("buffer should be modified")
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	e := newTestEditor("ab\ncd")
	keys(e, "j", "i", "Backspace")
	if got := e.Text(); got != "abcd" {
		t.Fatalf("text = %q", got)
	}
	if line, col := e.Cursor(); line != 0 || col != 2 {
		t.Errorf("cursor = %d,%d want 0,2", line, col)
	}
	keys(e, "Backspace")
	if got := e.Text(); got != "acd" {
		t.Errorf("text = %q", got)
	}
}

func TestEnterSplitsAtCursor(t *testing.T) {
	e := newTestEditor("hello world")
	keys(e, "l", "l", "l", "l", "l", "i", "Enter")
	if got := e.Text(); got != "hello\n world" {
		t.Errorf("text = %q", got)
	}
	if line, col := e.Cursor(); line != 1 || col != 0 {
		t.Errorf("cursor = %d,%d", line, col)
	}
}

func TestNavigationMotions(t *testing.T) {
	e := newTestEditor("one\nlonger line\nx")
	keys(e, "j", "$")
	if line, col := e.Cursor(); line != 1 || col != 11 {
		t.Errorf("after j$ cursor = %d,%d", line, col)
	}
	keys(e, "j")
	if line, col := e.Cursor(); line != 2 || col != 1 {
		t.Errorf("moving to a shorter line should clamp, got %d,%d", line, col)
	}
	keys(e, "j", "j")
	if line, _ := e.Cursor(); line != 2 {
		t.Errorf("cursor moved past the last line: %d", line)
	}
	keys(e, "k", "0")
	if line, col := e.Cursor(); line != 1 || col != 0 {
		t.Errorf("after k0 cursor = %d,%d", line, col)
	}
	keys(e, "x")
	if got := e.Text(); got != "one\nonger line\nx" {
		t.Errorf("x deleted wrong rune: %q", got)
	}
}

func TestColonCommands(t *testing.T) {
	tests := []struct {
		keys []string
		want Action
	}{
		{[]string{":", "w", "q", "Enter"}, ActionSaveQuit},
		{[]string{":", "q", "Enter"}, ActionQuit},
		{[]string{":", "w", "Enter"}, ActionSave},
		{[]string{":", "x", "y", "Enter"}, ActionNone},
		{[]string{":", "w", "Escape", "Enter"}, ActionNone},
	}
	for _, tt := range tests {
		e := newTestEditor("text")
		if got := keys(e, tt.keys...); got != tt.want {
			t.Errorf("%v: action = %v, want %v", tt.keys, got, tt.want)
		}
		if e.Command() != "" {
			t.Errorf("%v: command not reset: %q", tt.keys, e.Command())
		}
	}
}

func TestCommandComposition(t *testing.T) {
	e := newTestEditor("text")
	keys(e, ":", "w")
	if got := e.StatusRight(); got != ":w" {
		t.Errorf("pending command = %q", got)
	}
	// While composing, "i" is part of the command.
	keys(e, "i")
	if e.Mode() != Navigation || e.Command() != ":wi" {
		t.Errorf("mode %v command %q", e.Mode(), e.Command())
	}
	keys(e, "Backspace", "Backspace", "Backspace")
	if e.Command() != "" {
		t.Errorf("deleting the colon should end composition, got %q", e.Command())
	}
	keys(e, "i")
	if e.Mode() != Insertion {
		t.Error("i after composition should enter insertion")
	}
}

func TestSetTextOnlyInInsertion(t *testing.T) {
	e := newTestEditor("old")
	if e.SetText("new") {
		t.Fatal("SetText accepted in navigation mode")
	}
	keys(e, "i")
	if !e.SetText("line1\nline2") || e.Text() != "line1\nline2" {
		t.Errorf("SetText in insertion: %q", e.Text())
	}
	if e.LineCount() != 2 {
		t.Errorf("line count = %d", e.LineCount())
	}
}

func TestMaxLines(t *testing.T) {
	e := New(Config{Name: "f", Content: "a\nb", MaxLines: 2})
	keys(e, "i", "Enter")
	if e.LineCount() != 2 {
		t.Errorf("line count = %d, limit 2", e.LineCount())
	}
	if e.StatusRight() != "buffer full" {
		t.Errorf("status = %q", e.StatusRight())
	}
}

func TestMarkSaved(t *testing.T) {
	e := newTestEditor("x")
	keys(e, "i", "y")
	e.MarkSaved()
	if e.Modified() {
		t.Error("still modified after save")
	}
	if got := e.StatusRight(); got != `"notes.txt" written` {
		t.Errorf("status after save = %q", got)
	}
	keys(e, "Escape")
	if got := e.StatusRight(); got != `"notes.txt" 1L` {
		t.Errorf("status after next key = %q", got)
	}
}

func TestViewScrollsToCursor(t *testing.T) {
	e := newTestEditor("0\n1\n2\n3\n4\n5")
	keys(e, "j", "j", "j", "j")
	lines, top := e.View(3)
	if top != 2 || len(lines) != 3 || lines[0] != "2" {
		t.Errorf("view = %q top=%d", lines, top)
	}
}

func TestFrame(t *testing.T) {
	e := newTestEditor("abc")
	keys(e, "i")
	f := e.Frame()
	if f.Type != shared.MessageTypeEditor || f.EditorMode != "insertion" || f.EditorFile != "notes.txt" {
		t.Errorf("frame = %+v", f)
	}
	if f.EditorStatus != "-- INSERT --" || f.EditorData != "abc" {
		t.Errorf("frame status/data = %q %q", f.EditorStatus, f.EditorData)
	}
}

func TestCommandBackspaceRemovesWholeRune(t *testing.T) {
	e := newTestEditor("text")
	keys(e, ":", "é", "ü")
	keys(e, "Backspace")
	if e.Command() != ":é" {
		t.Errorf("command = %q, want %q", e.Command(), ":é")
	}
	keys(e, "Backspace")
	if e.Command() != ":" {
		t.Errorf("command = %q, want %q", e.Command(), ":")
	}
}
