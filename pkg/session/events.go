package session

// Event is an input to the session loop.
type Event interface {
	isEvent()
}

// Submit is a whole line sent by a client that edits locally.
type Submit struct {
	Line string
}

// Key is a single key press, named like the browser's KeyboardEvent.key.
type Key struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
}

// EditorText replaces the editor buffer (textarea clients).
type EditorText struct {
	Content string
}

// Resize reports the client's terminal size. Currently ignored.
type Resize struct {
	Cols, Rows int
}

// scriptStep and gameTick are posted by timers. gen ties them to the
// sequence or game that scheduled them.
type scriptStep struct{ gen uint64 }
type gameTick struct{ gen uint64 }

func (Submit) isEvent()     {}
func (Key) isEvent()        {}
func (EditorText) isEvent() {}
func (Resize) isEvent()     {}
func (scriptStep) isEvent() {}
func (gameTick) isEvent()   {}
