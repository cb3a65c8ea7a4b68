// Package tui hosts a terminal session in the local terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/session"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/shell"
	"github.com/flivyn/flivynterm/pkg/theme"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg carries one frame emitted by the session.
type frameMsg struct{ msg shared.Message }

// sessionEndedMsg is sent when the session loop returns.
type sessionEndedMsg struct{}

// Model renders the frames of one session. Key presses are posted back to
// the session; the model never mutates session state itself.
type Model struct {
	post func(session.Event) bool

	palette  theme.Palette
	styles   styles
	width    int
	height   int
	viewport viewport.Model

	lines        []shared.Line
	prompt       shared.Line
	input        string
	inputEnabled bool
	mode         string
	editor       *shared.Message
	game         *shared.Message
	admin        bool
	sessionID    string
	quitting     bool
}

// NewModel returns a model that forwards input to post.
func NewModel(post func(session.Event) bool) *Model {
	p := theme.MustLookup(theme.Default)
	return &Model{
		post:     post,
		palette:  p,
		styles:   newStyles(p),
		width:    80,
		height:   24,
		viewport: viewport.New(80, 21),
		mode:     session.ModalNone.String(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)
		m.refresh()
		m.send(session.Resize{Cols: msg.Width, Rows: msg.Height})

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlD:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		for _, ev := range keyEvents(msg) {
			m.send(ev)
		}

	case frameMsg:
		return m, m.apply(msg.msg)

	case sessionEndedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) send(ev session.Event) {
	if m.post != nil {
		m.post(ev)
	}
}

// apply folds one session frame into the view state.
func (m *Model) apply(f shared.Message) tea.Cmd {
	switch f.Type {
	case shared.MessageTypeText:
		m.lines = append(m.lines, f.Lines...)
		m.refresh()
	case shared.MessageTypeClear:
		m.lines = nil
		m.refresh()
	case shared.MessageTypeMode:
		m.mode = f.Mode
		if m.mode != session.ModalEditor.String() {
			m.editor = nil
		}
		if m.mode != session.ModalGame.String() {
			m.game = nil
		}
	case shared.MessageTypeInputControl:
		if f.InputEnabled != nil {
			m.inputEnabled = *f.InputEnabled
		}
	case shared.MessageTypePrompt:
		if f.Prompt != nil {
			m.prompt = *f.Prompt
		}
	case shared.MessageTypeInput:
		m.input = f.InputStr
	case shared.MessageTypeEditor:
		m.editor = &f
	case shared.MessageTypeGame:
		m.game = &f
	case shared.MessageTypeTheme:
		m.palette = theme.MustLookup(f.Theme)
		m.styles = newStyles(m.palette)
		m.refresh()
	case shared.MessageTypePrivilege:
		m.admin = f.Admin
	case shared.MessageTypeSession:
		m.sessionID = f.SessionID
	case shared.MessageTypeError:
		m.lines = append(m.lines, shared.Plain(f.Content))
		m.refresh()
	case shared.MessageTypeClose:
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcriptContent())
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.editor != nil:
		return m.editorView()
	case m.game != nil:
		return m.titleBar() + "\n" + m.gameView()
	}
	return m.titleBar() + "\n" + m.viewport.View() + "\n" + m.promptView()
}

// programHost forwards session frames into the bubbletea program.
type programHost struct {
	send func(tea.Msg)
}

func (h *programHost) Emit(msg shared.Message) { h.send(frameMsg{msg}) }

// Close needs nothing extra; the model quits on the close frame.
func (h *programHost) Close() {}

func (h *programHost) PrivilegeChanged(admin bool) {
	logger.Info(logger.AreaTerminal, "Local session admin=%v", admin)
}

// Config selects what the local session runs with.
type Config struct {
	SessionID    string
	Interpreter  *shell.Interpreter
	Recorder     session.Recorder
	Theme        string
	GridSize     int
	TickInterval time.Duration
	MaxLines     int
	Options      []tea.ProgramOption
}

// Run shows a session full screen until the user exits it, presses
// Ctrl+D or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(nil)
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, cfg.Options...)
	p := tea.NewProgram(m, opts...)

	sess := session.New(session.Config{
		ID:           cfg.SessionID,
		Interpreter:  cfg.Interpreter,
		Host:         &programHost{send: p.Send},
		Recorder:     cfg.Recorder,
		Theme:        cfg.Theme,
		GridSize:     cfg.GridSize,
		TickInterval: cfg.TickInterval,
		MaxLines:     cfg.MaxLines,
	})
	// Post can block while the session waits on p.Send, so keys go
	// through a buffered forwarder instead of being posted from Update.
	keys := make(chan session.Event, 1024)
	m.post = func(ev session.Event) bool {
		select {
		case keys <- ev:
			return true
		default:
			return false
		}
	}
	go func() {
		for {
			select {
			case ev := <-keys:
				if !sess.Post(ev) {
					return
				}
			case <-sess.Done():
				return
			}
		}
	}()

	go func() {
		sess.Run(ctx)
		p.Send(sessionEndedMsg{})
	}()

	_, err := p.Run()
	sess.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
