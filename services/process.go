package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Process is a running external player
type Process interface {
	// Wait blocks until the process has exited
	Wait() error
}

// Launcher starts the external player for one file
type Launcher interface {
	// Launch must not block on playback; cancelling ctx terminates the process
	Launch(ctx context.Context, filePath string) (Process, error)
}

// commandLauncher runs "<name> <args...> <file>" without a shell
type commandLauncher struct {
	name string
	args []string
}

// NewCommandLauncher creates a launcher for an audio player binary such as mplayer
func NewCommandLauncher(name string, args ...string) Launcher {
	return &commandLauncher{name: name, args: args}
}

func (l *commandLauncher) Launch(ctx context.Context, filePath string) (Process, error) {
	args := make([]string, 0, len(l.args)+1)
	args = append(args, l.args...)
	args = append(args, filePath)

	cmd := exec.CommandContext(ctx, l.name, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", l.name, err)
	}
	return cmd, nil
}

// CommandRunner runs a command to completion and returns its output
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// RunCommand is the CommandRunner backed by os/exec
func RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s %v: %w (%s)", name, args, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
