package shell

import (
	"errors"
	"strings"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/virtualfs"
)

// cmdLs lists the current directory, or the one named by the first argument.
func (in *Interpreter) cmdLs(env Env, args []string) []shared.Line {
	target := env.Cwd()
	label := strings.Join(target, "/")
	if len(args) > 0 {
		target = virtualfs.ParsePath(env.Cwd(), args[0])
		label = args[0]
	}

	entries, err := env.FS().List(target)
	if err != nil {
		return shared.PlainLines("ls: cannot access '" + label + "': " + reason(err))
	}

	lines := make([]shared.Line, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			lines = append(lines, shared.Styled(e.Name+"/", shared.StyleDir))
		} else {
			lines = append(lines, shared.Plain(e.Name))
		}
	}
	return lines
}

func (in *Interpreter) cmdPwd(env Env, args []string) []shared.Line {
	return shared.PlainLines(env.Cwd().String())
}

func (in *Interpreter) cmdCd(env Env, args []string) []shared.Line {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}

	switch raw {
	case "", "~", "/":
		env.SetCwd(nil)
		return nil
	case "..":
		env.SetCwd(env.Cwd().Dir())
		return nil
	}

	target := virtualfs.ParsePath(env.Cwd(), raw)
	if !env.FS().IsDir(target) {
		return shared.PlainLines("cd: no such file or directory: " + raw)
	}
	env.SetCwd(target)
	return nil
}

// cmdCat prints a file. Directories are reported as missing files.
func (in *Interpreter) cmdCat(env Env, args []string) []shared.Line {
	if len(args) == 0 {
		return shared.PlainLines("cat: missing operand")
	}
	content, err := env.FS().ReadFile(virtualfs.ParsePath(env.Cwd(), args[0]))
	if err != nil {
		return shared.PlainLines("cat: " + args[0] + ": No such file or directory")
	}
	return shared.PlainLines(strings.Split(content, "\n")...)
}

func (in *Interpreter) cmdMkdir(env Env, args []string) []shared.Line {
	if len(args) == 0 {
		return shared.PlainLines("mkdir: missing operand")
	}
	err := env.FS().CreateDirectory(virtualfs.ParsePath(env.Cwd(), args[0]))
	if err != nil {
		logger.Debug(logger.AreaFileSystem, "mkdir %s: %v", args[0], err)
		return shared.PlainLines("mkdir: cannot create directory ‘" + args[0] + "’: " + reason(err))
	}
	return nil
}

// cmdTouch creates an empty file. Touching an existing entry is a no-op.
func (in *Interpreter) cmdTouch(env Env, args []string) []shared.Line {
	if len(args) == 0 {
		return shared.PlainLines("touch: missing operand")
	}
	err := env.FS().CreateFile(virtualfs.ParsePath(env.Cwd(), args[0]))
	if err != nil && !errors.Is(err, virtualfs.ErrAlreadyExists) {
		logger.Debug(logger.AreaFileSystem, "touch %s: %v", args[0], err)
		return shared.PlainLines("touch: cannot touch '" + args[0] + "': " + reason(err))
	}
	return nil
}

func (in *Interpreter) cmdRm(env Env, args []string) []shared.Line {
	recursive := false
	if len(args) > 0 && args[0] == "-r" {
		recursive = true
		args = args[1:]
	}
	if len(args) == 0 {
		return shared.PlainLines("rm: missing operand")
	}

	target := virtualfs.ParsePath(env.Cwd(), args[0])
	if err := env.FS().Remove(target, recursive); err != nil {
		return shared.PlainLines("rm: cannot remove '" + args[0] + "': " + reason(err))
	}

	// Leave a removed directory instead of sitting in a detached subtree.
	cwd := env.Cwd()
	if len(cwd) >= len(target) && cwd[:len(target)].Equal(target) {
		env.SetCwd(target.Dir())
	}
	return nil
}

func (in *Interpreter) cmdVim(env Env, args []string) []shared.Line {
	if len(args) == 0 {
		return shared.PlainLines("vim: missing file operand")
	}
	target := virtualfs.ParsePath(env.Cwd(), args[0])
	content, err := env.FS().ReadFile(target)
	if err != nil {
		return shared.PlainLines("vim: can't open '" + args[0] + "'. Not a file.")
	}
	env.OpenEditor(target, args[0], content)
	return nil
}
