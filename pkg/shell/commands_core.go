package shell

import (
	"strings"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/theme"
)

// commands is the command table; anything else is "command not found".
var commands = map[string]bool{
	"help": true, "ls": true, "cd": true, "cat": true, "whoami": true, "date": true,
	"neofetch": true, "clear": true, "exit": true, "mkdir": true, "touch": true, "rm": true,
	"pwd": true, "echo": true, "history": true, "man": true, "theme": true, "vim": true,
	"snake": true, "apt": true, "cowsay": true, "sl": true, "reboot": true, "su": true,
	"uname": true,
}

// IsCommand reports whether name is a built-in.
func IsCommand(name string) bool {
	return commands[strings.ToLower(name)]
}

// Execute runs one submitted line and returns its output. An empty line
// produces nothing.
func (in *Interpreter) Execute(env Env, line string) []shared.Line {
	cmd, args := Parse(line)
	if cmd == "" {
		return nil
	}

	label := cmd
	if !commands[cmd] {
		label = "unknown"
	}
	if in.observe != nil {
		in.observe(label)
	}
	logger.Debug(logger.AreaTerminal, "Executing command '%s' args=%v", cmd, args)

	switch cmd {
	case "help":
		return in.cmdHelp(env, args)
	case "ls":
		return in.cmdLs(env, args)
	case "cd":
		return in.cmdCd(env, args)
	case "cat":
		return in.cmdCat(env, args)
	case "mkdir":
		return in.cmdMkdir(env, args)
	case "touch":
		return in.cmdTouch(env, args)
	case "rm":
		return in.cmdRm(env, args)
	case "vim":
		return in.cmdVim(env, args)
	case "pwd":
		return in.cmdPwd(env, args)
	case "theme":
		return in.cmdTheme(env, args)
	case "su":
		return in.cmdSu(env, args)
	case "whoami":
		return in.cmdWhoAmI(env, args)
	case "history":
		return in.cmdHistory(env, args)
	case "clear":
		return in.cmdClear(env, args)
	case "exit":
		return in.cmdExit(env, args)
	case "snake":
		return in.cmdSnake(env, args)
	case "echo":
		return in.cmdEcho(env, args)
	case "date":
		return in.cmdDate(env, args)
	case "uname":
		return in.cmdUname(env, args)
	case "man":
		return in.cmdMan(env, args)
	case "cowsay":
		return in.cmdCowsay(env, args)
	case "neofetch":
		return in.cmdNeofetch(env, args)
	case "sl":
		return in.cmdSl(env, args)
	case "apt":
		return in.cmdApt(env, args)
	case "reboot":
		return in.cmdReboot(env, args)
	default:
		logger.Debug(logger.AreaTerminal, "Unknown command: %s", cmd)
		return shared.PlainLines("command not found: " + cmd)
	}
}

func (in *Interpreter) cmdHelp(env Env, args []string) []shared.Line {
	return shared.PlainLines(
		"Available commands:",
		"  help, ls, cd, cat, whoami, date, neofetch, clear, exit",
		"  mkdir, touch, rm, pwd, echo, history, man, theme",
		"  vim, snake, apt, cowsay, sl, reboot",
	)
}

func (in *Interpreter) cmdTheme(env Env, args []string) []shared.Line {
	if len(args) > 0 {
		if _, ok := theme.Lookup(args[0]); ok {
			env.SetTheme(args[0])
			return shared.PlainLines("Theme set to " + args[0] + ".")
		}
	}
	return shared.PlainLines(theme.Usage())
}

// cmdSu switches user. Only "su - admin" and "su - guest" are known.
func (in *Interpreter) cmdSu(env Env, args []string) []shared.Line {
	switch strings.Join(args, " ") {
	case "- admin":
		env.BeginPasswordPrompt()
		return shared.PlainLines("Password:")
	case "- guest":
		if env.Privilege() == Admin {
			env.SetPrivilege(Guest)
			logger.AuthInfo("Admin logged out")
			return shared.PlainLines("Logged out.")
		}
		return shared.PlainLines("Already guest.")
	default:
		return shared.PlainLines("su: invalid user")
	}
}

func (in *Interpreter) cmdWhoAmI(env Env, args []string) []shared.Line {
	return shared.PlainLines(env.Privilege().String())
}

func (in *Interpreter) cmdHistory(env Env, args []string) []shared.Line {
	return shared.PlainLines(env.History()...)
}

func (in *Interpreter) cmdClear(env Env, args []string) []shared.Line {
	env.ClearTranscript()
	return nil
}

// cmdExit drops admin rights first; as guest it closes the terminal.
func (in *Interpreter) cmdExit(env Env, args []string) []shared.Line {
	if env.Privilege() == Admin {
		env.SetPrivilege(Guest)
		return shared.PlainLines("Exited admin mode.")
	}
	env.RequestClose()
	return nil
}

func (in *Interpreter) cmdSnake(env Env, args []string) []shared.Line {
	env.StartGame()
	return nil
}

func (in *Interpreter) cmdEcho(env Env, args []string) []shared.Line {
	return shared.PlainLines(strings.Join(args, " "))
}
