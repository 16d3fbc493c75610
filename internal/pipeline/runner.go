package pipeline

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// Command is one external program invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external commands. Output (stdout and stderr combined)
// goes to out.
type Runner interface {
	Run(ctx context.Context, cmd Command, out io.Writer) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command, out io.Writer) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty command")
	}
	// #nosec G204 - pipelines run commands their authors define
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// ShellCommand wraps a command line for the platform shell.
func ShellCommand(dir, line string) Command {
	if runtime.GOOS == "windows" {
		return Command{Dir: dir, Name: "cmd", Args: []string{"/C", line}}
	}
	return Command{Dir: dir, Name: "/bin/bash", Args: []string{"-c", line}}
}
