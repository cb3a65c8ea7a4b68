package tui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/flivyn/flivynterm/pkg/session"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/shell"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyEvents(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want []session.Event
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []session.Event{session.Key{Key: "Enter"}}},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, []session.Event{session.Key{Key: "ArrowUp"}}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, []session.Event{session.Key{Key: " "}}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, []session.Event{session.Key{Key: "Escape"}}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, []session.Event{session.Key{Key: "c", Ctrl: true}}},
		{"runes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")}, []session.Event{session.Key{Key: "l"}, session.Key{Key: "s"}}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, []session.Event{session.Key{Key: "x", Alt: true}}},
	}
	for _, tc := range tests {
		if got := keyEvents(tc.key); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %#v, want %#v", tc.name, got, tc.want)
		}
	}
}

// loop wires a model to a session without a bubbletea program: frames are
// applied directly and posted events are handled synchronously.
type loop struct {
	model *Model
	sess  *session.Session
	quit  bool
}

type directHost struct{ l *loop }

func (h directHost) Emit(msg shared.Message) {
	if cmd := h.l.model.apply(msg); cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			h.l.quit = true
		}
	}
}
func (h directHost) Close()                {}
func (h directHost) PrivilegeChanged(bool) {}

func newLoop(t *testing.T) *loop {
	t.Helper()
	l := &loop{}
	l.model = NewModel(func(ev session.Event) bool {
		l.sess.Handle(ev)
		return true
	})
	l.sess = session.New(session.Config{
		ID:          "local",
		Interpreter: shell.New(shell.WithObserver(nil)),
		Host:        directHost{l},
	})
	l.sess.Start()
	return l
}

func (l *loop) typeLine(s string) {
	l.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	l.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModelShowsTranscriptAndPrompt(t *testing.T) {
	l := newLoop(t)
	view := l.model.View()
	if !strings.Contains(view, session.Welcome) {
		t.Errorf("view lacks welcome line:\n%s", view)
	}
	if !strings.Contains(view, "guest@flivyn") {
		t.Errorf("view lacks prompt:\n%s", view)
	}

	l.typeLine("whoami")
	if got := l.model.lines[len(l.model.lines)-1].String(); got != "guest" {
		t.Errorf("last line = %q", got)
	}
	if !strings.Contains(l.model.View(), "guest@flivyn:~/$ whoami") {
		t.Error("view lacks echoed command")
	}
}

func TestModelMasksPassword(t *testing.T) {
	l := newLoop(t)
	l.typeLine("su - admin")
	l.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("secret")})

	if l.model.input != "******" {
		t.Errorf("input = %q", l.model.input)
	}
	if strings.Contains(l.model.View(), "secret") {
		t.Error("password shown in clear text")
	}
}

func TestModelEditorAndGameViews(t *testing.T) {
	l := newLoop(t)
	l.typeLine("vim about.txt")
	if l.model.editor == nil {
		t.Fatal("editor frame not applied")
	}
	if !strings.Contains(l.model.View(), "~") {
		t.Error("editor view should mark empty rows")
	}
	l.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":q")})
	l.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if l.model.editor != nil {
		t.Error("editor view should close after :q")
	}

	l.typeLine("snake")
	if l.model.game == nil {
		t.Fatal("game frame not applied")
	}
	if !strings.Contains(l.model.View(), "Score: 0") {
		t.Errorf("game view:\n%s", l.model.View())
	}
	l.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if l.model.game != nil {
		t.Error("game view should close after q")
	}
}

func TestModelThemeAndClear(t *testing.T) {
	l := newLoop(t)
	l.typeLine("theme retro")
	if l.model.palette.Name != "retro" {
		t.Errorf("palette = %s", l.model.palette.Name)
	}
	l.typeLine("clear")
	if len(l.model.lines) != 0 {
		t.Errorf("lines after clear = %d", len(l.model.lines))
	}
}

func TestModelQuitsOnExit(t *testing.T) {
	l := newLoop(t)
	l.typeLine("exit")
	if !l.quit || !l.model.quitting {
		t.Error("exit as guest should quit the program")
	}
	if l.model.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestCtrlDQuits(t *testing.T) {
	m := NewModel(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+D should quit")
	}
}
