package dev

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// LineFunc receives one line of toolchain output. stream is "stdout" or
// "stderr".
type LineFunc func(stream, line string)

// RunResult contains the result of one toolchain invocation.
type RunResult struct {
	// Success indicates the command exited zero.
	Success bool

	// Code is the process exit code. -1 when the process was killed.
	Code int

	// Duration is how long the command ran.
	Duration time.Duration
}

// Runner executes the project's build toolchain as a child process and
// streams its output line by line. The toolchain itself (npm, esbuild, a
// shell script) is the project's business; Runner only runs it and relays
// what it prints.
type Runner struct {
	mu      sync.Mutex
	current *exec.Cmd
}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes command in dir, forwarding each output line to onLine, and
// blocks until the process exits or ctx is cancelled. Toolchain failure is
// reported in the RunResult, not as an error; the error return covers only
// failures to start or wire up the process.
func (r *Runner) Run(ctx context.Context, dir, command string, args []string, onLine LineFunc) (RunResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	configureProcess(cmd)
	cmd.Cancel = func() error {
		return terminateProcess(cmd)
	}
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return RunResult{}, fmt.Errorf("dev: capture stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return RunResult{}, fmt.Errorf("dev: capture stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return RunResult{}, fmt.Errorf("dev: start %s: %w", command, err)
	}

	r.mu.Lock()
	r.current = cmd
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.current = nil
		r.mu.Unlock()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if onLine != nil {
				onLine("stdout", scanner.Text())
			}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if onLine != nil {
				onLine("stderr", scanner.Text())
			}
		}
	}()

	wg.Wait()
	waitErr := cmd.Wait()

	result := RunResult{
		Success:  waitErr == nil,
		Code:     cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return result, fmt.Errorf("dev: wait for %s: %w", command, waitErr)
		}
	}
	return result, nil
}

// IsRunning reports whether a toolchain process is currently executing.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}
