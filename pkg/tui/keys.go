package tui

import (
	"strings"

	"github.com/flivyn/flivynterm/pkg/session"

	tea "github.com/charmbracelet/bubbletea"
)

var namedKeys = map[tea.KeyType]string{
	tea.KeyEnter:     "Enter",
	tea.KeyBackspace: "Backspace",
	tea.KeyDelete:    "Delete",
	tea.KeyUp:        "ArrowUp",
	tea.KeyDown:      "ArrowDown",
	tea.KeyLeft:      "ArrowLeft",
	tea.KeyRight:     "ArrowRight",
	tea.KeyHome:      "Home",
	tea.KeyEnd:       "End",
	tea.KeyEsc:       "Escape",
	tea.KeyTab:       "Tab",
	tea.KeySpace:     " ",
}

// keyEvents translates a terminal key press into the key names the
// browser sends. Pasted text yields one event per rune.
func keyEvents(k tea.KeyMsg) []session.Event {
	if name, ok := namedKeys[k.Type]; ok {
		return []session.Event{session.Key{Key: name, Alt: k.Alt}}
	}
	if k.Type == tea.KeyRunes {
		events := make([]session.Event, 0, len(k.Runes))
		for _, r := range k.Runes {
			events = append(events, session.Key{Key: string(r), Alt: k.Alt})
		}
		return events
	}
	if name, ok := strings.CutPrefix(k.String(), "ctrl+"); ok {
		return []session.Event{session.Key{Key: name, Ctrl: true}}
	}
	return nil
}
