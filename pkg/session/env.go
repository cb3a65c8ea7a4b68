package session

import (
	"github.com/flivyn/flivynterm/pkg/editor"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/shell"
	"github.com/flivyn/flivynterm/pkg/snake"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// Session implements shell.Env.
var _ shell.Env = (*Session)(nil)

func (s *Session) FS() *virtualfs.FS              { return s.fs }
func (s *Session) Cwd() virtualfs.Path            { return s.cwd }
func (s *Session) SetCwd(p virtualfs.Path)        { s.cwd = p }
func (s *Session) Privilege() shell.Privilege     { return s.priv }
func (s *Session) SetPrivilege(p shell.Privilege) { s.priv = p }
func (s *Session) Theme() string                  { return s.theme }
func (s *Session) SetTheme(name string)           { s.theme = name }
func (s *Session) BeginPasswordPrompt()           { s.modal = ModalPassword }
func (s *Session) RequestClose()                  { s.closing = true }

// History returns a copy of the submitted commands, oldest first.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// ClearTranscript empties the screen.
func (s *Session) ClearTranscript() {
	s.transcript = nil
	s.cleared = true
	s.emit(shared.Message{Type: shared.MessageTypeClear})
}

// OpenEditor switches to the editor on a copy of content.
func (s *Session) OpenEditor(path virtualfs.Path, name, content string) {
	s.editor = editor.New(editor.Config{Path: path, Name: name, Content: content, MaxLines: s.maxLines})
	s.modal = ModalEditor
	logger.Info(logger.AreaEditor, "Session %s editing %s", s.id, path)
}

func (s *Session) editorKey(k Key) {
	if k.Ctrl || k.Alt {
		return
	}
	switch s.editor.HandleKey(k.Key) {
	case editor.ActionSave:
		if s.saveEditor() {
			s.editor.MarkSaved()
		}
	case editor.ActionSaveQuit:
		name := s.editor.Name()
		saved := s.saveEditor()
		s.closeEditor()
		if saved {
			s.appendLines(shared.Plain(`"` + name + `" written.`))
		}
		return
	case editor.ActionQuit:
		s.closeEditor()
		return
	}
	s.emit(s.editor.Frame())
}

// saveEditor writes the buffer back to the file it was opened on.
func (s *Session) saveEditor() bool {
	if err := s.fs.WriteFile(s.editor.Path(), s.editor.Text()); err != nil {
		logger.Warn(logger.AreaEditor, "Session %s could not save %s: %v", s.id, s.editor.Path(), err)
		return false
	}
	return true
}

func (s *Session) closeEditor() {
	s.editor = nil
	s.modal = ModalNone
}

// StartGame switches to a new snake round and starts its ticker.
func (s *Session) StartGame() {
	s.game = snake.New(s.gridSize, s.rng)
	s.gameRecorded = false
	s.modal = ModalGame
	s.gameGen++
	s.scheduleTick()
	logger.Debug(logger.AreaGame, "Session %s started snake", s.id)
}

func (s *Session) scheduleTick() {
	s.gameTimer = s.sched.Schedule(s.tickInterval, gameTick{gen: s.gameGen}, s.deliver)
}

func (s *Session) advanceGame(gen uint64) {
	if gen != s.gameGen || s.modal != ModalGame {
		return
	}
	s.game.Tick()
	s.emit(s.game.Frame())
	if s.game.Over() {
		s.recordGame()
		return
	}
	s.scheduleTick()
}

func (s *Session) gameKey(k Key) {
	if k.Key == "q" && !k.Ctrl {
		s.endGame()
		return
	}
	s.game.TurnKey(k.Key)
}

func (s *Session) endGame() {
	s.recordGame()
	s.gameGen++
	if s.gameTimer != nil {
		s.gameTimer.Stop()
		s.gameTimer = nil
	}
	s.game = nil
	s.modal = ModalNone
}

func (s *Session) recordGame() {
	if s.gameRecorded {
		return
	}
	s.gameRecorded = true
	score := s.game.Score()
	logger.Info(logger.AreaGame, "Session %s snake finished with score %d", s.id, score)
	if s.recorder != nil {
		s.recorder.RecordGame(s.id, score)
	}
	metrics.RecordSnakeScore(score)
}

// deliver is handed to the scheduler; it posts timer events to the loop.
func (s *Session) deliver(ev Event) {
	s.Post(ev)
}
