package shell

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// fakeEnv records every request a command makes.
type fakeEnv struct {
	fs      *virtualfs.FS
	cwd     virtualfs.Path
	priv    Privilege
	theme   string
	history []string

	cleared    bool
	prompted   bool
	gameOn     bool
	closed     bool
	editorPath virtualfs.Path
	editorName string
	editorText string
	script     []Step
	closeAfter bool
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{fs: virtualfs.Seed(), theme: "dark"}
}

func (e *fakeEnv) FS() *virtualfs.FS        { return e.fs }
func (e *fakeEnv) Cwd() virtualfs.Path      { return e.cwd }
func (e *fakeEnv) SetCwd(p virtualfs.Path)  { e.cwd = p }
func (e *fakeEnv) Privilege() Privilege     { return e.priv }
func (e *fakeEnv) SetPrivilege(p Privilege) { e.priv = p }
func (e *fakeEnv) Theme() string            { return e.theme }
func (e *fakeEnv) SetTheme(t string)        { e.theme = t }
func (e *fakeEnv) History() []string        { return e.history }
func (e *fakeEnv) ClearTranscript()         { e.cleared = true }
func (e *fakeEnv) BeginPasswordPrompt()     { e.prompted = true }
func (e *fakeEnv) StartGame()               { e.gameOn = true }
func (e *fakeEnv) RequestClose()            { e.closed = true }
func (e *fakeEnv) RunScript(s []Step, closeAfter bool) {
	e.script, e.closeAfter = s, closeAfter
}
func (e *fakeEnv) OpenEditor(p virtualfs.Path, name, content string) {
	e.editorPath, e.editorName, e.editorText = p, name, content
}

func newTestInterpreter() *Interpreter {
	return New(WithObserver(nil))
}

func run(t *testing.T, in *Interpreter, env Env, line string) []string {
	t.Helper()
	return shared.Texts(in.Execute(env, line))
}

func TestParse(t *testing.T) {
	cmd, args := Parse("  LS   -a  projects ")
	if cmd != "ls" {
		t.Errorf("cmd = %q, want ls", cmd)
	}
	if !reflect.DeepEqual(args, []string{"-a", "projects"}) {
		t.Errorf("args = %v", args)
	}
	if cmd, args := Parse("   "); cmd != "" || args != nil {
		t.Errorf("blank line parsed as %q %v", cmd, args)
	}
}

func TestSimpleCommands(t *testing.T) {
	in := newTestInterpreter()
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"help", []string{
			"Available commands:",
			"  help, ls, cd, cat, whoami, date, neofetch, clear, exit",
			"  mkdir, touch, rm, pwd, echo, history, man, theme",
			"  vim, snake, apt, cowsay, sl, reboot",
		}},
		{"echo hello   world", []string{"hello world"}},
		{"echo", []string{""}},
		{"pwd", []string{"/"}},
		{"whoami", []string{"guest"}},
		{"uname", []string{"Linux"}},
		{"uname -a", []string{"Linux flivyn-portfolio 5.4.0 x86_64 GNU/Linux"}},
		{"man", []string{"No manual entry for anything"}},
		{"man ls", []string{"No manual entry for ls"}},
		{"foo", []string{"command not found: foo"}},
		{"HELP", []string{
			"Available commands:",
			"  help, ls, cd, cat, whoami, date, neofetch, clear, exit",
			"  mkdir, touch, rm, pwd, echo, history, man, theme",
			"  vim, snake, apt, cowsay, sl, reboot",
		}},
		{"su root", []string{"su: invalid user"}},
		{"su - guest", []string{"Already guest."}},
		{"apt", []string{"apt: command not found. Did you mean `apt update` or `apt install`?"}},
		{"theme neon", []string{"Usage: theme [dark|light|retro|ocean]"}},
		{"theme", []string{"Usage: theme [dark|light|retro|ocean]"}},
	}
	for _, tt := range tests {
		got := run(t, in, newFakeEnv(), tt.line)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: got %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLs(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	lines := in.Execute(env, "ls")
	want := []string{"about.txt", "contact.md", "games/", "projects/"}
	if got := shared.Texts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("ls = %q, want %q", got, want)
	}
	if lines[2].Spans[0].Style != shared.StyleDir {
		t.Errorf("directory entry style = %q", lines[2].Spans[0].Style)
	}
	if lines[0].Spans[0].Style != "" {
		t.Errorf("file entry should be unstyled, got %q", lines[0].Spans[0].Style)
	}

	if got := run(t, in, env, "ls projects"); !reflect.DeepEqual(got, []string{"README.md"}) {
		t.Errorf("ls projects = %q", got)
	}
	if got := run(t, in, env, "ls about.txt"); got[0] != "ls: cannot access 'about.txt': Not a directory" {
		t.Errorf("ls on file = %q", got)
	}
	if got := run(t, in, env, "ls nope"); got[0] != "ls: cannot access 'nope': No such file or directory" {
		t.Errorf("ls on missing = %q", got)
	}

	in.Execute(env, "mkdir empty")
	if got := run(t, in, env, "ls empty"); len(got) != 0 {
		t.Errorf("empty dir listed %q", got)
	}
}

func TestCd(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	if out := run(t, in, env, "cd projects"); len(out) != 0 {
		t.Fatalf("cd projects printed %q", out)
	}
	if got := env.Cwd().String(); got != "/projects" {
		t.Fatalf("cwd = %s", got)
	}
	if got := run(t, in, env, "pwd"); got[0] != "/projects" {
		t.Errorf("pwd = %q", got)
	}

	run(t, in, env, "cd ..")
	if len(env.Cwd()) != 0 {
		t.Errorf("cd .. left cwd at %s", env.Cwd())
	}
	run(t, in, env, "cd ..")
	if len(env.Cwd()) != 0 {
		t.Errorf("cd .. at root moved to %s", env.Cwd())
	}

	run(t, in, env, "cd games")
	run(t, in, env, "cd ~")
	if len(env.Cwd()) != 0 {
		t.Errorf("cd ~ left cwd at %s", env.Cwd())
	}

	if got := run(t, in, env, "cd about.txt"); got[0] != "cd: no such file or directory: about.txt" {
		t.Errorf("cd into file = %q", got)
	}
	if got := run(t, in, env, "cd ghost"); got[0] != "cd: no such file or directory: ghost" {
		t.Errorf("cd into missing = %q", got)
	}
}

func TestCat(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	got := run(t, in, env, "cat about.txt")
	if len(got) != 4 || got[0] != "Hey, I'm Flivyn, a Systems Integrator apprentice from Germany." || got[1] != "" {
		t.Errorf("cat about.txt = %q", got)
	}
	if got := run(t, in, env, "cat"); got[0] != "cat: missing operand" {
		t.Errorf("cat without operand = %q", got)
	}
	if got := run(t, in, env, "cat projects"); got[0] != "cat: projects: No such file or directory" {
		t.Errorf("cat on directory = %q", got)
	}
	if got := run(t, in, env, "cat /projects/README.md"); len(got) != 1 {
		t.Errorf("cat absolute = %q", got)
	}
}

func TestMkdirTouchRm(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	steps := []struct {
		line string
		want []string
	}{
		{"mkdir", []string{"mkdir: missing operand"}},
		{"mkdir docs", nil},
		{"mkdir docs", []string{"mkdir: cannot create directory ‘docs’: File exists"}},
		{"mkdir a/b", []string{"mkdir: cannot create directory ‘a/b’: No such file or directory"}},
		{"touch", []string{"touch: missing operand"}},
		{"touch docs/notes.txt", nil},
		{"touch docs/notes.txt", nil},
		{"touch x/y", []string{"touch: cannot touch 'x/y': No such file or directory"}},
		{"rm", []string{"rm: missing operand"}},
		{"rm -r", []string{"rm: missing operand"}},
		{"rm ghost", []string{"rm: cannot remove 'ghost': No such file or directory"}},
		{"rm docs", []string{"rm: cannot remove 'docs': Is a directory"}},
		{"rm -rf docs", []string{"rm: cannot remove '-rf': No such file or directory"}},
		{"rm -R docs", []string{"rm: cannot remove '-R': No such file or directory"}},
		{"ls docs", []string{"notes.txt"}},
		{"rm docs/notes.txt", nil},
		{"rm -r docs", nil},
		{"ls docs", []string{"ls: cannot access 'docs': No such file or directory"}},
	}
	for _, s := range steps {
		if got := run(t, in, env, s.line); !reflect.DeepEqual(got, s.want) {
			t.Errorf("%q: got %q, want %q", s.line, got, s.want)
		}
	}
}

func TestRmCwdMovesUp(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()
	run(t, in, env, "cd projects")
	run(t, in, env, "rm -r /projects")
	if len(env.Cwd()) != 0 {
		t.Errorf("cwd after removing it = %s, want /", env.Cwd())
	}
}

func TestVim(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	if got := run(t, in, env, "vim"); got[0] != "vim: missing file operand" {
		t.Errorf("vim without operand = %q", got)
	}
	if got := run(t, in, env, "vim projects"); got[0] != "vim: can't open 'projects'. Not a file." {
		t.Errorf("vim on directory = %q", got)
	}
	if got := run(t, in, env, "vim new.txt"); got[0] != "vim: can't open 'new.txt'. Not a file." {
		t.Errorf("vim on missing = %q", got)
	}

	if out := run(t, in, env, "vim about.txt"); len(out) != 0 {
		t.Fatalf("vim printed %q", out)
	}
	if env.editorName != "about.txt" || env.editorPath.String() != "/about.txt" {
		t.Errorf("editor opened %q at %s", env.editorName, env.editorPath)
	}
	if !strings.HasPrefix(env.editorText, "Hey, I'm Flivyn") {
		t.Errorf("editor content = %q", env.editorText)
	}
}

func TestTheme(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()
	if got := run(t, in, env, "theme retro"); got[0] != "Theme set to retro." {
		t.Errorf("theme retro = %q", got)
	}
	if env.theme != "retro" {
		t.Errorf("theme = %s", env.theme)
	}
}

func TestSuAndExit(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()

	if got := run(t, in, env, "su - admin"); got[0] != "Password:" || !env.prompted {
		t.Fatalf("su - admin = %q prompted=%v", got, env.prompted)
	}

	got := shared.Texts(in.Authenticate(env, "wrong"))
	if !reflect.DeepEqual(got, []string{"Password:", "Authentication failed."}) || env.priv != Guest {
		t.Errorf("wrong password: %q priv=%v", got, env.priv)
	}

	got = shared.Texts(in.Authenticate(env, "admin123"))
	if !reflect.DeepEqual(got, []string{"Password:", "Authentication successful. Welcome, admin."}) || env.priv != Admin {
		t.Errorf("right password: %q priv=%v", got, env.priv)
	}
	if got := run(t, in, env, "whoami"); got[0] != "admin" {
		t.Errorf("whoami = %q", got)
	}

	if got := run(t, in, env, "exit"); got[0] != "Exited admin mode." || env.priv != Guest || env.closed {
		t.Errorf("exit as admin = %q priv=%v closed=%v", got, env.priv, env.closed)
	}
	if got := run(t, in, env, "exit"); len(got) != 0 || !env.closed {
		t.Errorf("exit as guest = %q closed=%v", got, env.closed)
	}

	env.priv = Admin
	if got := run(t, in, env, "su - guest"); got[0] != "Logged out." || env.priv != Guest {
		t.Errorf("su - guest = %q", got)
	}
}

func TestCustomVerifier(t *testing.T) {
	in := New(WithObserver(nil), WithVerifier(LiteralPassword("s3cret")))
	env := newFakeEnv()
	if got := shared.Texts(in.Authenticate(env, "admin123")); got[1] != "Authentication failed." {
		t.Errorf("default password accepted by custom verifier: %q", got)
	}
	if in.Authenticate(env, "s3cret"); env.priv != Admin {
		t.Error("configured password rejected")
	}
}

func TestHistoryAndClear(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()
	env.history = []string{"ls", "cd projects", "history"}
	if got := run(t, in, env, "history"); !reflect.DeepEqual(got, env.history) {
		t.Errorf("history = %q", got)
	}
	if out := run(t, in, env, "clear"); len(out) != 0 || !env.cleared {
		t.Errorf("clear = %q cleared=%v", out, env.cleared)
	}
}

func TestDate(t *testing.T) {
	fixed := time.Date(2024, time.March, 5, 9, 7, 3, 0, time.FixedZone("CET", 3600))
	in := New(WithObserver(nil), WithClock(func() time.Time { return fixed }))
	got := run(t, in, newFakeEnv(), "date")
	if want := "Tue Mar 05 2024 09:07:03 GMT+0100 (CET)"; got[0] != want {
		t.Errorf("date = %q, want %q", got[0], want)
	}
}

func TestCowsay(t *testing.T) {
	in := newTestInterpreter()
	got := run(t, in, newFakeEnv(), "cowsay hi there")
	if got[0] != " < hi there >" || got[1] != " ----------" {
		t.Errorf("cowsay header = %q", got[:2])
	}
	if len(got) != 7 || got[2] != `        \   ^__^` {
		t.Errorf("cowsay art = %q", got)
	}
	if got := run(t, in, newFakeEnv(), "cowsay"); got[0] != " < Moo! >" {
		t.Errorf("default cowsay = %q", got[0])
	}
}

func TestNeofetch(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()
	lines := in.Execute(env, "neofetch")
	if len(lines) != 7 {
		t.Fatalf("neofetch printed %d lines", len(lines))
	}
	if got := lines[0].String(); got != "    ,-.       guest@portfolio" {
		t.Errorf("first line = %q", got)
	}
	if lines[0].Spans[1].Style != shared.StyleAccent {
		t.Error("user label should be accented")
	}
	if got := lines[3].String(); got != "     ||       Shell: FlivynTerm" {
		t.Errorf("shell line = %q", got)
	}
}

func TestScriptedCommands(t *testing.T) {
	in := newTestInterpreter()

	env := newFakeEnv()
	in.Execute(env, "sl")
	if len(env.script) != 5 || env.closeAfter {
		t.Fatalf("sl script = %d steps closeAfter=%v", len(env.script), env.closeAfter)
	}
	for _, s := range env.script {
		if s.Delay != 200*time.Millisecond {
			t.Errorf("sl step delay = %v", s.Delay)
		}
	}

	env = newFakeEnv()
	in.Execute(env, "apt update")
	if len(env.script) != 1 || env.script[0].Delay != 400*time.Millisecond ||
		env.script[0].Line.String() != "Reading package lists... Done" {
		t.Errorf("apt update script = %+v", env.script)
	}

	env = newFakeEnv()
	in.Execute(env, "apt install")
	if env.script[0].Line.String() != "Installing cool-package... Done" || env.script[0].Delay != 800*time.Millisecond {
		t.Errorf("apt install script = %+v", env.script)
	}
	in.Execute(env, "apt install htop")
	if env.script[0].Line.String() != "Installing htop... Done" {
		t.Errorf("apt install htop script = %+v", env.script)
	}

	env = newFakeEnv()
	in.Execute(env, "reboot")
	if len(env.script) != 1 || !env.closeAfter || env.script[0].Line.String() != "Rebooting..." {
		t.Errorf("reboot script = %+v closeAfter=%v", env.script, env.closeAfter)
	}
}

func TestSnakeStartsGame(t *testing.T) {
	in := newTestInterpreter()
	env := newFakeEnv()
	if out := run(t, in, env, "snake"); len(out) != 0 || !env.gameOn {
		t.Errorf("snake = %q gameOn=%v", out, env.gameOn)
	}
}

func TestObserverLabels(t *testing.T) {
	var seen []string
	in := New(WithObserver(func(c string) { seen = append(seen, c) }))
	env := newFakeEnv()
	in.Execute(env, "ls")
	in.Execute(env, "xyzzy")
	in.Execute(env, "")
	if !reflect.DeepEqual(seen, []string{"ls", "unknown"}) {
		t.Errorf("observed %q", seen)
	}
}

func TestPromptLine(t *testing.T) {
	line := PromptLine(Admin, "flivyn", virtualfs.Path{"projects"}, "ls")
	if got := line.String(); got != "admin@flivyn:~/projects$ ls" {
		t.Errorf("prompt = %q", got)
	}
	if line.Spans[0].Style != shared.StylePrompt || line.Spans[2].Style != shared.StylePath {
		t.Errorf("prompt styles = %+v", line.Spans)
	}
	if got := PromptLine(Guest, "flivyn", nil, "").String(); got != "guest@flivyn:~/$ " {
		t.Errorf("root prompt = %q", got)
	}
}
