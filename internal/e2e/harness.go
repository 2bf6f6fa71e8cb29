// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes a harness that runs commands against an isolated registry,
// fixture management, and assertion helpers.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Theomat/rusync/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Stderr contains the captured standard error.
	Stderr string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness provides a test harness for running E2E CLI tests.
// It manages environment isolation, an isolated registry file, and
// output capture.
type Harness struct {
	t            *testing.T
	homeDir      string
	registryPath string
}

// NewHarness creates a new E2E test harness. It points HOME and the
// registry at a temp directory so tests never touch real profiles.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()

	h := &Harness{
		t:            t,
		homeDir:      homeDir,
		registryPath: filepath.Join(homeDir, "registry.toml"),
	}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("RUSYNC_REGISTRY_PATH", h.registryPath)

	return h
}

// SetEnv sets an environment variable for CLI commands run through this
// harness. The previous value is restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// RegistryPath returns the isolated registry file location.
func (h *Harness) RegistryPath() string {
	return h.registryPath
}

// Run executes a CLI command with the given arguments and captures stdout
// and stderr.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.run("", false, args)
}

// RunWithStdin executes a CLI command with stdin input and captures output.
// This is useful for testing commands that prompt.
func (h *Harness) RunWithStdin(stdin string, args ...string) *Result {
	h.t.Helper()
	return h.run(stdin, true, args)
}

func (h *Harness) run(stdin string, useStdin bool, args []string) *Result {
	h.t.Helper()

	// Prepend "rusync" as the program name if not provided
	if len(args) == 0 || args[0] != "rusync" {
		args = append([]string{"rusync"}, args...)
	}

	oldStdin := os.Stdin
	if useStdin {
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			h.t.Fatalf("failed to create stdin pipe: %v", err)
		}
		go func() {
			defer func() {
				_ = stdinW.Close()
			}()
			_, _ = stdinW.WriteString(stdin)
		}()
		os.Stdin = stdinR
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	oldStderr := os.Stderr
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stderr pipe: %v", err)
	}
	os.Stderr = stderrW

	// Read both streams concurrently to avoid pipe buffer deadlock.
	// If the command outputs more than the pipe buffer size (~64KB),
	// it will block waiting for the buffer to drain.
	var stdoutBuf, stderrBuf bytes.Buffer
	var stdoutErr, stderrErr error
	done := make(chan struct{}, 2)
	go func() {
		_, stdoutErr = io.Copy(&stdoutBuf, stdoutR)
		done <- struct{}{}
	}()
	go func() {
		_, stderrErr = io.Copy(&stderrBuf, stderrR)
		done <- struct{}{}
	}()

	cmdErr := cli.Run(context.Background(), args)

	// Restore the streams and close the writers to signal EOF to the
	// reader goroutines.
	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	if err := stderrW.Close(); err != nil {
		h.t.Fatalf("failed to close stderr pipe writer: %v", err)
	}
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	os.Stdin = oldStdin

	<-done
	<-done
	if stdoutErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", stdoutErr)
	}
	if stderrErr != nil {
		h.t.Fatalf("failed to read captured stderr: %v", stderrErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
