package terminal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"wgconf/internal/logger"
)

type Command struct {
	Command string
	Args    []string
	Dir     string
}

func NewCommand(command string, args ...string) *Command {
	return &Command{
		Command: command,
		Args:    args,
	}
}

func (c *Command) Execute(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)

	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("command failed: %v\nStderr: %s", err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ShellReloader runs a shell command after the configuration file changed,
// typically "wg-quick down wg0 && wg-quick up wg0". An empty command does
// nothing.
type ShellReloader struct {
	Command string
}

func (r ShellReloader) Reload(ctx context.Context) error {
	if strings.TrimSpace(r.Command) == "" {
		logger.Debug("No restart command configured; skipping reload")
		return nil
	}

	logger.Info("Restarting WireGuard: %s", r.Command)

	if _, err := NewCommand("/bin/sh", "-c", r.Command).Execute(ctx); err != nil {
		return fmt.Errorf("failed to restart wireguard: %w", err)
	}

	logger.Info("WireGuard restarted")

	return nil
}
