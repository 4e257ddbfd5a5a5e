package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"
)

// Editor opens the config file in an external text editor
type Editor struct {
	command     []string
	logger      klog.Logger
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewEditor creates an editor for command, which may carry arguments
// (e.g. "code --wait").
func NewEditor(logger klog.Logger, command string) *Editor {
	return &Editor{
		command:     strings.Fields(command),
		logger:      klog.LoggerWithName(logger, "editor"),
		execCommand: exec.CommandContext,
	}
}

// Edit opens path in the editor, blocks until the editor exits and reports
// whether the file content changed. Line differences are logged.
func (e *Editor) Edit(ctx context.Context, path string) (bool, error) {
	if len(e.command) == 0 {
		return false, fmt.Errorf("no editor configured")
	}

	before, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	e.logger.V(2).Info("Editing the config file", "path", path, "editor", e.command[0])
	args := append(append([]string(nil), e.command[1:]...), path)
	cmd := e.execCommand(ctx, e.command[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("editor %s failed: %w", e.command[0], err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read config file after edit: %w", err)
	}

	LogDifferences(e.logger, string(before), string(after))
	return string(before) != string(after), nil
}

// LogDifferences logs changed lines between two versions of the file. When
// lines were added or removed only a warning is logged.
func LogDifferences(logger klog.Logger, before, after string) {
	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")

	if len(beforeLines) != len(afterLines) {
		logger.Info("Rows have been added or removed from the config file",
			"before", len(beforeLines), "after", len(afterLines))
		return
	}

	for i := range beforeLines {
		if beforeLines[i] == afterLines[i] {
			continue
		}
		logger.V(2).Info("Config line changed", "line", i+1,
			"original", redactPasswordLine(beforeLines[i]),
			"modified", redactPasswordLine(afterLines[i]))
	}
}

// redactPasswordLine hides the value of a password key
func redactPasswordLine(line string) string {
	key, _, found := strings.Cut(line, "=")
	if found && strings.EqualFold(strings.TrimSpace(key), "password") {
		return strings.TrimRight(key, " ") + " = [REDACTED]"
	}
	return line
}
