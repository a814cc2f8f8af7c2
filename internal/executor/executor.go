// Package executor runs external commands behind an interface so the
// browser probe can be tested without real browsers installed.
package executor

import (
	"context"
	"os/exec"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Output runs a command and returns its standard output
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct{}

// NewSystemExecutor creates a new SystemExecutor
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Output runs a command and returns its standard output
func (e *SystemExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	OutputFunc func(name string, args ...string) ([]byte, error)
	Calls      []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// Output calls the mock function
func (m *MockExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.OutputFunc != nil {
		return m.OutputFunc(name, args...)
	}
	return []byte(""), nil
}
