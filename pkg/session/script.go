package session

import (
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/shell"
)

// RunScript prints steps one by one, each after its delay. The prompt stays
// disabled until the last step; closeAfter closes the terminal at the end.
func (s *Session) RunScript(steps []shell.Step, closeAfter bool) {
	if len(steps) == 0 {
		s.closing = s.closing || closeAfter
		return
	}
	s.script = steps
	s.scriptIndex = 0
	s.scriptClose = closeAfter
	s.scriptGen++
	s.busy = true
	s.scheduleStep()
}

func (s *Session) scheduleStep() {
	d := s.script[s.scriptIndex].Delay
	s.scriptTimer = s.sched.Schedule(d, scriptStep{gen: s.scriptGen}, s.deliver)
}

func (s *Session) advanceScript(gen uint64) {
	if gen != s.scriptGen || !s.busy {
		return
	}
	s.appendLines(s.script[s.scriptIndex].Line)
	s.scriptIndex++
	if s.scriptIndex < len(s.script) {
		s.scheduleStep()
		return
	}

	closeAfter := s.scriptClose
	s.resetScript()
	metrics.RecordScript("completed")
	if closeAfter {
		s.closing = true
	}
}

// cancelScript stops the running sequence; pending steps never print.
func (s *Session) cancelScript() {
	if s.scriptTimer != nil {
		s.scriptTimer.Stop()
	}
	s.resetScript()
	metrics.RecordScript("cancelled")
	logger.Debug(logger.AreaSession, "Session %s cancelled a scripted sequence", s.id)
}

func (s *Session) resetScript() {
	s.scriptGen++
	s.script = nil
	s.scriptIndex = 0
	s.scriptClose = false
	s.scriptTimer = nil
	s.busy = false
}
