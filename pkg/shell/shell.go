// Package shell is the command interpreter of the terminal. It parses one
// submitted line, runs the matching built-in against the session's virtual
// file system and returns the lines to print.
package shell

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// Privilege is the session's user level.
type Privilege int

const (
	Guest Privilege = iota
	Admin
)

func (p Privilege) String() string {
	if p == Admin {
		return "admin"
	}
	return "guest"
}

// Step is one line of a scripted sequence, printed after Delay.
type Step struct {
	Delay time.Duration
	Line  shared.Line
}

// Env is the session state a command may read or change. Modal requests
// (password prompt, editor, game, scripts, close) are carried out by the
// session after Execute returns.
type Env interface {
	FS() *virtualfs.FS
	Cwd() virtualfs.Path
	SetCwd(virtualfs.Path)
	Privilege() Privilege
	SetPrivilege(Privilege)
	Theme() string
	SetTheme(string)
	History() []string
	ClearTranscript()

	BeginPasswordPrompt()
	OpenEditor(path virtualfs.Path, name, content string)
	StartGame()
	RunScript(steps []Step, closeAfter bool)
	RequestClose()
}

// Verifier checks the admin password.
type Verifier interface {
	Verify(password string) bool
}

// LiteralPassword compares against a plain configured password.
type LiteralPassword string

func (p LiteralPassword) Verify(password string) bool {
	return subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
}

// DefaultPassword is the admin password when nothing is configured.
const DefaultPassword = "admin123"

// Interpreter runs built-in commands. It holds no per-session state and can
// be shared between sessions.
type Interpreter struct {
	host     string
	now      func() time.Time
	verifier Verifier
	observe  func(command string)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithHost sets the host name shown in the prompt.
func WithHost(host string) Option {
	return func(in *Interpreter) { in.host = host }
}

// WithClock replaces time.Now for the date command.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// WithVerifier sets the admin password check.
func WithVerifier(v Verifier) Option {
	return func(in *Interpreter) { in.verifier = v }
}

// WithObserver is called with the name of every executed command.
func WithObserver(fn func(command string)) Option {
	return func(in *Interpreter) { in.observe = fn }
}

// New returns an interpreter with the default host, clock and password.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		host:     "flivyn",
		now:      time.Now,
		verifier: LiteralPassword(DefaultPassword),
		observe:  metrics.RecordCommand,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Host returns the prompt host name.
func (in *Interpreter) Host() string { return in.host }

// Parse splits a line into a lower-cased command and its arguments.
func Parse(line string) (string, []string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", nil
	}
	return strings.ToLower(tokens[0]), tokens[1:]
}

// PromptLine renders "user@host:~/cwd$ cmd" with prompt and path styles.
func PromptLine(priv Privilege, host string, cwd virtualfs.Path, cmd string) shared.Line {
	return shared.Line{Spans: []shared.Span{
		{Text: priv.String() + "@" + host, Style: shared.StylePrompt},
		{Text: ":"},
		{Text: "~/" + strings.Join(cwd, "/"), Style: shared.StylePath},
		{Text: "$ " + cmd},
	}}
}

// Prompt renders the input prompt for env without a command.
func (in *Interpreter) Prompt(env Env) shared.Line {
	return PromptLine(env.Privilege(), in.host, env.Cwd(), "")
}

// Authenticate consumes the line typed at the password prompt. The typed
// text never reaches the transcript.
func (in *Interpreter) Authenticate(env Env, password string) []shared.Line {
	ok := in.verifier.Verify(strings.TrimSpace(password))
	metrics.RecordAuthAttempt(ok)
	if !ok {
		logger.AuthWarn("Admin authentication failed")
		return shared.PlainLines("Password:", "Authentication failed.")
	}
	env.SetPrivilege(Admin)
	logger.AuthInfo("Admin authentication successful")
	return shared.PlainLines("Password:", "Authentication successful. Welcome, admin.")
}

// reason turns a file system error into the text shells print.
func reason(err error) string {
	switch {
	case errors.Is(err, virtualfs.ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, virtualfs.ErrNotADirectory):
		return "Not a directory"
	case errors.Is(err, virtualfs.ErrIsADirectory), errors.Is(err, virtualfs.ErrNotAFile):
		return "Is a directory"
	case errors.Is(err, virtualfs.ErrAlreadyExists):
		return "File exists"
	case errors.Is(err, virtualfs.ErrRoot):
		return "Operation not permitted"
	default:
		return err.Error()
	}
}
