package platform

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"sync"
)

// FakeResult is the canned outcome of one command line.
type FakeResult struct {
	Output string
	Stderr string
	Err    error
}

// Fake is an in-memory Platform for tests. Commands are keyed by the full
// command line ("name arg1 arg2"); unknown commands fail with
// exec.ErrNotFound and unknown files with fs.ErrNotExist.
type Fake struct {
	Commands    map[string]FakeResult
	Executables map[string]bool
	Files       map[string]string
	Privileged  bool
	Host        string

	mu    sync.Mutex
	calls []string
}

// Name returns "fake".
func (f *Fake) Name() string { return "fake" }

// Run returns the canned result registered for the command line.
func (f *Fake) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := commandLine(name, args)

	f.mu.Lock()
	f.calls = append(f.calls, line)
	f.mu.Unlock()

	res, ok := f.Commands[line]
	if !ok {
		return nil, &CommandError{Command: line, Err: exec.ErrNotFound}
	}
	if res.Err != nil {
		return []byte(res.Output), &CommandError{Command: line, Stderr: res.Stderr, Err: res.Err}
	}
	return []byte(res.Output), nil
}

// Executable reports whether path was registered as executable.
func (f *Fake) Executable(path string) bool { return f.Executables[path] }

// ReadFile returns the registered contents for path.
func (f *Fake) ReadFile(path string) ([]byte, error) {
	content, ok := f.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

// IsPrivileged returns the Privileged field.
func (f *Fake) IsPrivileged() bool { return f.Privileged }

// Hostname returns the Host field.
func (f *Fake) Hostname() (string, error) {
	if f.Host == "" {
		return "", errors.New("hostname not set")
	}
	return f.Host, nil
}

// Calls returns the command lines run so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// ErrExit is a stand-in for a non-zero exit status in FakeResult.Err.
var ErrExit = errors.New("exit status 1")
