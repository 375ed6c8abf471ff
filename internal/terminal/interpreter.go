// Package terminal implements the investigation shell: a fixed table of
// Windows-flavoured commands over a case's simulated disk.
package terminal

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/forensim/internal/evidence"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/vfs"
)

// Env is the session state a command runs against.
type Env struct {
	Case *scenario.Case
	Cwd  string
}

// Result is the outcome of one command line. The interpreter never mutates
// the session; callers apply the effects it describes.
type Result struct {
	Output string
	// Cwd is the working directory after the command.
	Cwd string
	// Read is the canonical path of a file that was displayed, or "".
	Read string
	// Clear asks the caller to drop the terminal transcript.
	Clear bool
}

type handler func(env Env, arg string) Result

// Interpreter dispatches command lines to their handlers.
type Interpreter struct {
	commands map[string]handler
}

// New returns an interpreter with the full command table.
func New() *Interpreter {
	in := &Interpreter{}
	in.commands = map[string]handler{
		"help":       static(helpText),
		"clear":      clearScreen,
		"pwd":        pwd,
		"ls":         list,
		"dir":        list,
		"cd":         changeDir,
		"type":       readFile,
		"cat":        readFile,
		"whoami":     static(whoamiText),
		"ipconfig":   static(ipconfigText),
		"netstat":    static(netstatText),
		"systeminfo": static(systeminfoText),
		"exit":       static(exitText),
	}
	return in
}

// Execute runs one line of input. The command name and argument are
// lower-cased; the argument is the remaining tokens joined by single spaces.
// User mistakes are reported in Output, never as errors.
func (in *Interpreter) Execute(env Env, line string) Result {
	if env.Cwd == "" {
		env.Cwd = vfs.Root
	}
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Result{Cwd: env.Cwd}
	}
	if env.Case == nil || env.Case.FileSystem == nil {
		return Result{Output: "No case loaded.", Cwd: env.Cwd}
	}

	name, arg := fields[0], strings.Join(fields[1:], " ")
	h, ok := in.commands[name]
	if !ok {
		return Result{
			Output: fmt.Sprintf("'%s' is not recognized as an internal or external command.", name),
			Cwd:    env.Cwd,
		}
	}
	return h(env, arg)
}

func static(text string) handler {
	return func(env Env, _ string) Result {
		return Result{Output: text, Cwd: env.Cwd}
	}
}

func clearScreen(env Env, _ string) Result {
	return Result{Cwd: env.Cwd, Clear: true}
}

func pwd(env Env, _ string) Result {
	return Result{Output: vfs.Display(env.Cwd), Cwd: env.Cwd}
}

func list(env Env, _ string) Result {
	children := vfs.ListChildren(env.Case.FileSystem, env.Cwd)
	if len(children) == 0 {
		return Result{Output: "(empty directory)", Cwd: env.Cwd}
	}

	lines := make([]string, 0, len(children))
	for _, c := range children {
		var glyph, suffix string
		switch {
		case evidence.IsEvidenceName(c.Name, env.Case.Evidence):
			glyph = "📁 "
		case c.IsDir():
			glyph = "📂 "
		default:
			glyph = "📄 "
		}
		if c.IsDir() {
			suffix = `\`
		}
		lines = append(lines, glyph+c.Name+suffix)
	}
	return Result{Output: strings.Join(lines, "\n"), Cwd: env.Cwd}
}

func changeDir(env Env, arg string) Result {
	switch arg {
	case "":
		return Result{Output: vfs.Display(env.Cwd), Cwd: env.Cwd}
	case "..":
		return Result{Cwd: vfs.Resolve(env.Cwd, "..")}
	case "/":
		return Result{Cwd: vfs.Root}
	}

	target := vfs.Resolve(env.Cwd, arg)
	n, ok := vfs.Lookup(env.Case.FileSystem, target)
	if !ok {
		return Result{Output: "Path not found: " + arg, Cwd: env.Cwd}
	}
	if !n.IsDir() {
		return Result{Output: arg + " is not a directory", Cwd: env.Cwd}
	}
	canonical, _ := vfs.Canonical(env.Case.FileSystem, target)
	return Result{Cwd: canonical}
}

func readFile(env Env, arg string) Result {
	if arg == "" {
		return Result{Output: "Usage: type <filename>", Cwd: env.Cwd}
	}

	target := vfs.Resolve(env.Cwd, arg)
	n, ok := vfs.Lookup(env.Case.FileSystem, target)
	if !ok {
		return Result{Output: "File not found: " + arg, Cwd: env.Cwd}
	}
	if n.IsDir() {
		return Result{Output: arg + " is a directory", Cwd: env.Cwd}
	}

	out := n.Content
	if out == "" {
		out = "(empty file)"
	}
	canonical, _ := vfs.Canonical(env.Case.FileSystem, target)
	return Result{Output: out, Cwd: env.Cwd, Read: canonical}
}
