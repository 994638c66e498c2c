package hooks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

// ScriptRunner runs scripts with the toolchain root as working directory.
// Executables go through os/exec; scripts starting with TengoShebang run in-process.
type ScriptRunner struct {
	env   Environment
	tengo *TengoExecutor
}

// NewScriptRunner creates a runner for env.
func NewScriptRunner(env Environment) *ScriptRunner {
	return &ScriptRunner{env: env, tengo: NewTengoExecutor(env)}
}

// Environment returns the environment scripts run with.
func (r *ScriptRunner) Environment() Environment { return r.env }

// Run implements Runner.
func (r *ScriptRunner) Run(ctx context.Context, hook HookType, pkg, path string) error {
	if err := os.Chmod(path, fsutil.FileModeExec); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to make script executable"), "script", path)
	}
	if err := r.env.Prepare(); err != nil {
		logger.Debug("Could not prepare script directories", logger.Fields{"error": err.Error()})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read script"), "script", path)
	}

	logger.Debug("Running lifecycle script", logger.Fields{"hook": string(hook), "package": pkg, "script": path})
	if isTengo(content) {
		return r.tengo.Execute(ctx, hook, pkg, content)
	}
	return r.exec(ctx, hook, pkg, path)
}

func isTengo(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return strings.TrimSpace(string(line)) == TengoShebang
}

func (r *ScriptRunner) exec(ctx context.Context, hook HookType, pkg, path string) error {
	cmd := exec.CommandContext(ctx, path) //nolint:gosec // scripts ship with installed packages
	cmd.Dir = r.env.Root
	cmd.Env = r.env.Merge(os.Environ())

	fields := logger.Fields{"hook": string(hook), "package": pkg}
	stdout := &logWriter{fields: fields}
	stderr := &logWriter{fields: fields, warn: true}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	stdout.Close()
	stderr.Close()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "script failed"), "exit_code", exitCode), "script", path)
	}
	return nil
}

// logWriter forwards script output line by line to the logger.
type logWriter struct {
	fields logger.Fields
	warn   bool
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if w.warn {
		logger.Warn(msg, w.fields)
	} else {
		logger.Info(msg, w.fields)
	}
}
