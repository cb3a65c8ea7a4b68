package shell

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flivyn/flivynterm/pkg/shared"
)

// DateLayout mimics the browser's Date.toString output.
const DateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Delays of the scripted commands.
const (
	slStepDelay       = 200 * time.Millisecond
	aptUpdateDelay    = 400 * time.Millisecond
	aptInstallDelay   = 800 * time.Millisecond
	rebootDelay       = 500 * time.Millisecond
	defaultAptPackage = "cool-package"
)

var trainLines = []string{
	"      =     _\\-~-/",
	"     |\\__/..|      ",
	"     \\/      |      ",
	"     /        \\_____",
	"     |___________|  ",
}

func (in *Interpreter) cmdDate(env Env, args []string) []shared.Line {
	return shared.PlainLines(in.now().Format(DateLayout))
}

func (in *Interpreter) cmdUname(env Env, args []string) []shared.Line {
	if len(args) > 0 && args[0] == "-a" {
		return shared.PlainLines("Linux flivyn-portfolio 5.4.0 x86_64 GNU/Linux")
	}
	return shared.PlainLines("Linux")
}

func (in *Interpreter) cmdMan(env Env, args []string) []shared.Line {
	topic := "anything"
	if len(args) > 0 {
		topic = args[0]
	}
	return shared.PlainLines("No manual entry for " + topic)
}

func (in *Interpreter) cmdCowsay(env Env, args []string) []shared.Line {
	msg := strings.Join(args, " ")
	if msg == "" {
		msg = "Moo!"
	}
	return shared.PlainLines(
		" < "+msg+" >",
		" "+strings.Repeat("-", utf8.RuneCountInString(msg)+2),
		`        \   ^__^`,
		`         \  (oo)\_______`,
		`            (__)\       )\/\`,
		`                ||----w |`,
		`                ||     ||`,
	)
}

func (in *Interpreter) cmdNeofetch(env Env, args []string) []shared.Line {
	accent := func(prefix, label, rest string) shared.Line {
		return shared.Line{Spans: []shared.Span{
			{Text: prefix},
			{Text: label, Style: shared.StyleAccent},
			{Text: rest},
		}}
	}
	return []shared.Line{
		accent("    ,-.       ", env.Privilege().String()+"@portfolio", ""),
		shared.Plain("    ./(       --------------"),
		accent("    (_=       ", "OS", ": Web Browser"),
		accent("     ||       ", "Shell", ": FlivynTerm"),
		shared.Plain("    ,(_).      "),
		shared.Plain("   ((_  )      "),
		shared.Plain(`    *""*`),
	}
}

func (in *Interpreter) cmdSl(env Env, args []string) []shared.Line {
	steps := make([]Step, len(trainLines))
	for i, l := range trainLines {
		steps[i] = Step{Delay: slStepDelay, Line: shared.Plain(l)}
	}
	env.RunScript(steps, false)
	return nil
}

func (in *Interpreter) cmdApt(env Env, args []string) []shared.Line {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "update":
		env.RunScript([]Step{{Delay: aptUpdateDelay, Line: shared.Plain("Reading package lists... Done")}}, false)
	case "install":
		pkg := defaultAptPackage
		if len(args) > 1 {
			pkg = args[1]
		}
		env.RunScript([]Step{{Delay: aptInstallDelay, Line: shared.Plain("Installing " + pkg + "... Done")}}, false)
	default:
		return shared.PlainLines("apt: command not found. Did you mean `apt update` or `apt install`?")
	}
	return nil
}

// cmdReboot prints a message and then closes the terminal.
func (in *Interpreter) cmdReboot(env Env, args []string) []shared.Line {
	env.RunScript([]Step{{Delay: rebootDelay, Line: shared.Plain("Rebooting...")}}, true)
	return nil
}
