// Package run executes external commands for the provisioning core.
//
// Every component that shells out (backend adapters, the auto-update
// scheduler, shortcut creation) goes through the Runner interface so the
// orchestration logic can be exercised in tests without touching real
// package managers.
package run

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Sink receives one completed log line at a time. It is the single logging
// capability threaded through the core; implementations decide where lines
// go (terminal, TUI channel, persistent run log).
type Sink interface {
	Log(line string)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(string)

// Log calls f(line).
func (f SinkFunc) Log(line string) { f(line) }

// Discard is a Sink that drops all lines.
var Discard Sink = SinkFunc(func(string) {})

// Command describes one child-process invocation.
type Command struct {
	Path string            // executable path or name resolved via PATH
	Args []string          // argument vector, excluding the executable
	Env  map[string]string // overrides merged over the current environment
	Dir  string            // working directory; empty = inherit
}

// Runner executes external commands and reports their exit codes.
// Implementations never retry; retry policy lives in the orchestrator.
type Runner interface {
	// Run executes the command with stdin closed, merges stdout and stderr
	// into one stream, forwards each completed line to sink as it arrives,
	// and returns the process exit code. A start failure returns -1 after
	// logging the error.
	Run(ctx context.Context, cmd Command, sink Sink) int
}

// ExecRunner runs commands as real child processes.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command, sink Sink) int {
	sink.Log("> " + c.Path + argSuffix(c.Args))

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		env := os.Environ()
		for k, v := range c.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	hideConsoleWindow(cmd)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		sink.Log(fmt.Sprintf("command failed to start: %v", err))
		return -1
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		_ = pw.Close()
		close(done)
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), " \t\r"); line != "" {
			sink.Log(line)
		}
	}
	// A line past the buffer cap aborts the scanner. Keep draining so the
	// pipe never backs up and blocks the child's writes.
	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, pr)
	}
	<-done

	return cmd.ProcessState.ExitCode()
}

func argSuffix(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return " " + strings.Join(args, " ")
}

// Capture runs the command and returns its combined output as captured
// lines instead of streaming them to a visible sink. Used for small
// version/prefix queries where the output is data, not progress.
func Capture(ctx context.Context, r Runner, c Command) (string, int) {
	var lines []string
	code := r.Run(ctx, c, SinkFunc(func(line string) {
		if strings.HasPrefix(line, "> ") && len(lines) == 0 {
			return // drop the echoed command line
		}
		lines = append(lines, line)
	}))
	return strings.TrimSpace(strings.Join(lines, "\n")), code
}
