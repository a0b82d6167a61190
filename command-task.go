package buildscript

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// CommandTask runs an external command. Status lines and captured output go
// to the diagnostic stream (visible in verbose builds only); a failing
// command is additionally logged at Warn so it surfaces as a directive.
type CommandTask[State any] struct {
	Task[State]

	Command   []string
	Dir       string
	Env       []string
	DependsOn []string

	// Pty runs the command under a pseudo-terminal, for tools that buffer
	// or drop progress output when piped.
	Pty bool
}

func (t *CommandTask[State]) Dependencies(context.Context) []string {
	return t.DependsOn
}

func (t *CommandTask[State]) Run(ctx context.Context, _ *State) error {
	str := strings.Join(t.Command, " ")

	args := make([]string, 0, len(t.Command)-1)
	for _, a := range t.Command[1:] {
		args = append(args, os.ExpandEnv(a))
	}

	cmd := exec.CommandContext(ctx, t.Command[0], args...)
	cmd.Dir = t.Dir
	cmd.Env = append(os.Environ(), t.Env...)

	start := time.Now()
	out, err := runCommand(cmd, t.Pty)
	duration := time.Since(start).Round(time.Millisecond).String()

	diag := NewPlainWriter(stderrStream)

	if err != nil {
		fmt.Fprintf(
			diag,
			"%s %s %s\n",
			color.RedString("❌"),
			GetTaskName(ctx),
			color.BlackString(duration),
		)
	} else {
		fmt.Fprintf(
			diag,
			"%s %s %s\n",
			color.GreenString("✓"),
			GetTaskName(ctx),
			color.BlackString(duration),
		)
	}

	fmt.Fprintln(diag, color.BlackString("$ %s", str))

	if err != nil {
		if len(out) > 0 {
			fmt.Fprintln(diag, string(out))
		}
		zap.L().Warn(
			"command failed",
			zap.String("buildscript.task", GetTaskName(ctx)),
			zap.String("command", str),
			zap.Error(err),
		)
	} else if len(out) > 0 {
		fmt.Fprintln(diag, color.BlackString(string(out)))
	}

	return err
}
