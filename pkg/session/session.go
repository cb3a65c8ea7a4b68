// Package session is the per-visitor state machine of the terminal. A Session
// owns a private virtual file system and routes events to the interpreter,
// the editor or the game. All state changes happen on the goroutine running
// Run; timers only post events back into it.
package session

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/flivyn/flivynterm/pkg/editor"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/shell"
	"github.com/flivyn/flivynterm/pkg/snake"
	"github.com/flivyn/flivynterm/pkg/theme"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// Welcome is the first transcript line of a new session.
const Welcome = "Welcome to FlivynTerm! Type `help` to get started."

// Modal is the component that currently receives input.
type Modal int

const (
	ModalNone Modal = iota
	ModalPassword
	ModalEditor
	ModalGame
)

func (m Modal) String() string {
	switch m {
	case ModalPassword:
		return "password"
	case ModalEditor:
		return "editor"
	case ModalGame:
		return "game"
	default:
		return "shell"
	}
}

// Host displays what the session emits.
type Host interface {
	Emit(msg shared.Message)
	// Close hides the terminal (exit as guest, reboot).
	Close()
	PrivilegeChanged(admin bool)
}

// Recorder receives audit records. Implementations must not block.
type Recorder interface {
	RecordCommand(sessionID, line string)
	RecordGame(sessionID string, score int)
}

// Config holds the dependencies and tunables of a session.
type Config struct {
	ID           string
	Interpreter  *shell.Interpreter
	Host         Host
	Recorder     Recorder
	Scheduler    Scheduler
	FS           *virtualfs.FS // defaults to a fresh seed tree
	Theme        string
	GridSize     int
	TickInterval time.Duration
	MaxLines     int // editor buffer limit
	Rand         *rand.Rand
	QueueSize    int
}

// sentState is what the host last saw, so sync only emits changes.
type sentState struct {
	valid        bool
	theme        string
	modal        Modal
	priv         shell.Privilege
	inputEnabled bool
	prompt       string
	masked       bool
}

// Session is one terminal. Handle and the accessors are not safe for
// concurrent use; Post and Close are.
type Session struct {
	id       string
	interp   *shell.Interpreter
	host     Host
	recorder Recorder
	sched    Scheduler

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	fs         *virtualfs.FS
	cwd        virtualfs.Path
	priv       shell.Privilege
	theme      string
	history    []string
	histCursor int
	input      string
	transcript []shared.Line
	modal      Modal
	busy       bool
	cleared    bool
	closing    bool
	closed     bool

	editor   *editor.Editor
	maxLines int

	game         *snake.Game
	gameGen      uint64
	gameTimer    Timer
	gameRecorded bool
	gridSize     int
	tickInterval time.Duration
	rng          *rand.Rand

	script      []shell.Step
	scriptIndex int
	scriptClose bool
	scriptGen   uint64
	scriptTimer Timer

	sent sentState
}

// New creates a session with the welcome line in its transcript.
func New(cfg Config) *Session {
	s := &Session{
		id:           cfg.ID,
		interp:       cfg.Interpreter,
		host:         cfg.Host,
		recorder:     cfg.Recorder,
		sched:        cfg.Scheduler,
		fs:           cfg.FS,
		theme:        cfg.Theme,
		histCursor:   -1,
		maxLines:     cfg.MaxLines,
		gridSize:     cfg.GridSize,
		tickInterval: cfg.TickInterval,
		rng:          cfg.Rand,
		done:         make(chan struct{}),
	}
	if s.interp == nil {
		s.interp = shell.New()
	}
	if s.sched == nil {
		s.sched = TimeScheduler{}
	}
	if s.fs == nil {
		s.fs = virtualfs.Seed()
	}
	if _, ok := theme.Lookup(s.theme); !ok {
		s.theme = theme.Default
	}
	if s.gridSize <= 0 {
		s.gridSize = snake.DefaultGridSize
	}
	if s.tickInterval <= 0 {
		s.tickInterval = snake.DefaultTickInterval
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 64
	}
	s.events = make(chan Event, queue)
	s.transcript = []shared.Line{shared.Plain(Welcome)}
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Post queues ev for the loop. It returns false once the session is closed.
func (s *Session) Post(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Close stops the loop. Safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run emits the initial state and processes events until ctx is cancelled
// or the session closes.
func (s *Session) Run(ctx context.Context) error {
	metrics.SessionStarted()
	defer metrics.SessionEnded()
	defer s.shutdown()

	logger.SessionInfo("Session %s started", s.id)
	s.Start()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case ev := <-s.events:
			s.Handle(ev)
		}
	}
}

// Start sends the full state to the host.
func (s *Session) Start() {
	s.sent = sentState{}
	s.emitTheme()
	if len(s.transcript) > 0 {
		s.emit(shared.Message{Type: shared.MessageTypeText, Lines: s.transcript})
	}
	s.sync()
}

// shutdown cancels timers. Late timer events are dropped by Post.
func (s *Session) shutdown() {
	s.closed = true
	s.scriptGen++
	s.gameGen++
	if s.scriptTimer != nil {
		s.scriptTimer.Stop()
	}
	if s.gameTimer != nil {
		s.gameTimer.Stop()
	}
	s.Close()
	logger.SessionInfo("Session %s ended", s.id)
}

// Handle processes one event synchronously.
func (s *Session) Handle(ev Event) {
	if s.closed {
		return
	}
	switch ev := ev.(type) {
	case Submit:
		s.submit(ev.Line)
	case Key:
		s.handleKey(ev)
	case EditorText:
		if s.modal == ModalEditor && s.editor.SetText(ev.Content) {
			s.emit(s.editor.Frame())
		}
	case Resize:
	case scriptStep:
		s.advanceScript(ev.gen)
	case gameTick:
		s.advanceGame(ev.gen)
	}
	s.sync()
	s.finishClose()
}

// submit runs one line at the shell or password prompt.
func (s *Session) submit(line string) {
	if s.busy || s.modal == ModalEditor || s.modal == ModalGame {
		return
	}
	s.histCursor = -1
	s.setInput("")

	if s.modal == ModalPassword {
		s.modal = ModalNone
		s.appendLines(s.interp.Authenticate(s, line)...)
		return
	}

	command := strings.TrimSpace(line)
	prompt := shell.PromptLine(s.priv, s.interp.Host(), s.cwd, command)
	if command != "" && s.recorder != nil {
		s.recorder.RecordCommand(s.id, command)
	}

	s.cleared = false
	out := s.interp.Execute(s, command)
	// history shows what came before it.
	if command != "" {
		s.history = append(s.history, command)
	}
	if s.cleared {
		// clear leaves an empty screen, its own prompt line included.
		s.appendLines(out...)
		return
	}
	s.appendLines(append([]shared.Line{prompt}, out...)...)
}

func (s *Session) handleKey(k Key) {
	switch s.modal {
	case ModalGame:
		s.gameKey(k)
		return
	case ModalEditor:
		s.editorKey(k)
		return
	}

	if k.Ctrl && strings.EqualFold(k.Key, "c") {
		s.interrupt()
		return
	}
	if s.busy || k.Ctrl || k.Alt {
		return
	}

	switch k.Key {
	case "Enter":
		s.submit(s.input)
	case "Backspace":
		if s.input != "" {
			_, size := utf8.DecodeLastRuneInString(s.input)
			s.setInput(s.input[:len(s.input)-size])
		}
	case "ArrowUp":
		if s.modal == ModalNone {
			s.recall(1)
		}
	case "ArrowDown":
		if s.modal == ModalNone {
			s.recall(-1)
		}
	default:
		if isPrintable(k.Key) {
			s.setInput(s.input + k.Key)
		}
	}
}

// recall walks the history, newest first. The cursor is -1 for the empty line.
func (s *Session) recall(delta int) {
	next := s.histCursor + delta
	if next > len(s.history)-1 {
		next = len(s.history) - 1
	}
	if next < -1 {
		next = -1
	}
	if delta > 0 && next < 0 {
		return
	}
	s.histCursor = next
	if next < 0 {
		s.setInput("")
		return
	}
	s.setInput(s.history[len(s.history)-1-next])
}

// interrupt handles Ctrl+C at the prompt or during a scripted sequence.
func (s *Session) interrupt() {
	if s.busy {
		s.cancelScript()
		s.appendLines(shared.Plain("^C"))
		return
	}
	echo := s.input
	if s.modal == ModalPassword {
		echo = ""
		s.modal = ModalNone
	}
	s.appendLines(shell.PromptLine(s.priv, s.interp.Host(), s.cwd, echo), shared.Plain("^C"))
	s.histCursor = -1
	s.setInput("")
}

func (s *Session) setInput(v string) {
	if v == s.input {
		return
	}
	s.input = v
	shown := v
	if s.modal == ModalPassword {
		shown = strings.Repeat("*", utf8.RuneCountInString(v))
	}
	s.emit(shared.Message{Type: shared.MessageTypeInput, InputStr: shown})
}

func (s *Session) appendLines(lines ...shared.Line) {
	if len(lines) == 0 {
		return
	}
	s.transcript = append(s.transcript, lines...)
	s.emit(shared.Message{Type: shared.MessageTypeText, Lines: lines})
}

func (s *Session) emit(msg shared.Message) {
	if s.host != nil {
		s.host.Emit(msg)
	}
}

func (s *Session) emitTheme() {
	p := theme.MustLookup(s.theme)
	s.emit(shared.Message{Type: shared.MessageTypeTheme, Theme: p.Name, ThemeColors: p.Colors()})
	s.sent.theme = s.theme
}

func (s *Session) promptLine() (shared.Line, bool) {
	if s.modal == ModalPassword {
		return shared.Line{}, true
	}
	return s.interp.Prompt(s), false
}

// sync emits whatever changed since the host was last updated.
func (s *Session) sync() {
	first := !s.sent.valid
	s.sent.valid = true

	if s.theme != s.sent.theme {
		s.emitTheme()
	}
	if first || s.modal != s.sent.modal {
		s.sent.modal = s.modal
		s.emit(shared.Message{Type: shared.MessageTypeMode, Mode: s.modal.String()})
		switch s.modal {
		case ModalEditor:
			s.emit(s.editor.Frame())
		case ModalGame:
			s.emit(s.game.Frame())
		}
	}
	if first || s.priv != s.sent.priv {
		changed := !first || s.priv != shell.Guest
		s.sent.priv = s.priv
		admin := s.priv == shell.Admin
		s.emit(shared.Message{Type: shared.MessageTypePrivilege, Admin: admin})
		if changed && s.host != nil {
			s.host.PrivilegeChanged(admin)
		}
	}
	enabled := !s.busy && (s.modal == ModalNone || s.modal == ModalPassword)
	if first || enabled != s.sent.inputEnabled {
		s.sent.inputEnabled = enabled
		s.emit(shared.Message{Type: shared.MessageTypeInputControl, InputEnabled: shared.BoolPtr(enabled)})
	}
	prompt, masked := s.promptLine()
	if text := prompt.String(); first || text != s.sent.prompt || masked != s.sent.masked {
		s.sent.prompt, s.sent.masked = text, masked
		s.emit(shared.Message{Type: shared.MessageTypePrompt, Prompt: &prompt, Masked: masked})
	}
}

// finishClose runs a close requested by a command once its output is out.
func (s *Session) finishClose() {
	if !s.closing || s.closed {
		return
	}
	s.emit(shared.Message{Type: shared.MessageTypeClose})
	if s.host != nil {
		s.host.Close()
	}
	s.shutdown()
}

// Transcript returns the lines shown so far.
func (s *Session) Transcript() []shared.Line { return s.transcript }

// Modal returns the active modal.
func (s *Session) Modal() Modal { return s.modal }

// Busy reports whether a scripted sequence is running.
func (s *Session) Busy() bool { return s.busy }

// Input returns the line being composed.
func (s *Session) Input() string { return s.input }

// Editor returns the open editor or nil.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Game returns the running game or nil.
func (s *Session) Game() *snake.Game { return s.game }

// Closed reports whether the session has shut down.
func (s *Session) Closed() bool { return s.closed }

func isPrintable(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return unicode.IsPrint(r)
}
