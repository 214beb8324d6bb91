// Package classify wraps the external image-classification oracle: a
// child process that takes an image path and prints a one-line verdict.
package classify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// labelMarker precedes the predicted label in the oracle's output, e.g.
// "I am 97.12% sure this is: FLOOD".
const labelMarker = "sure this is:"

// Unknown is returned when the oracle output carries no label.
const Unknown = "Unknown"

// ParseLabel extracts the predicted disaster-type label from raw oracle
// output. Total and pure: output without the marker is not an error, it
// is the Unknown case.
func ParseLabel(raw string) string {
	idx := strings.Index(raw, labelMarker)
	if idx < 0 {
		return Unknown
	}
	label := raw[idx+len(labelMarker):]
	if nl := strings.IndexByte(label, '\n'); nl >= 0 {
		label = label[:nl]
	}
	label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "\r"))
	if label == "" {
		return Unknown
	}
	return label
}

// Client invokes the oracle process with a bounded wait.
type Client struct {
	command string
	args    []string
	timeout time.Duration
}

func NewClient(command string, args []string, timeout time.Duration) *Client {
	return &Client{
		command: command,
		args:    args,
		timeout: timeout,
	}
}

// Classify runs the oracle against the image at path and returns its raw
// stdout. A hung process is killed when the timeout elapses; the caller
// treats any error as "classification unavailable" and degrades to
// Unknown rather than rejecting the report.
func (c *Client) Classify(ctx context.Context, imagePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string{}, c.args...), imagePath)
	cmd := exec.CommandContext(ctx, c.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			slog.Error("oracle diagnostics", "stderr", stderr.String())
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("oracle timed out after %s: %w", c.timeout, ctx.Err())
		}
		return "", fmt.Errorf("oracle invocation failed: %w", err)
	}

	return stdout.String(), nil
}
