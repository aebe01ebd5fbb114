package monitor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Bridge is the device-side capability the collector and prober depend on.
// Implementations return the raw text of the command output.
type Bridge interface {
	// Report returns the per-process frame timing dump for pkg.
	Report(ctx context.Context, pkg string) (string, error)
	// DisplayInfo returns the display service dump.
	DisplayInfo(ctx context.Context) (string, error)
}

// CommandError reports a device-bridge invocation that did not complete successfully:
// adb missing, device unreachable or ambiguous, or a non-zero exit status.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + firstLine(out)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsCommandError reports whether err (or anything it wraps) is a *CommandError.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// ADB runs dumpsys through the adb binary on the host.
type ADB struct {
	// Path of the adb binary; "adb" resolves through $PATH.
	Path string
	// Serial scopes every invocation to one device (adb -s). Empty means adb's default.
	Serial string
}

// NewADB returns an ADB bridge for the given binary and optional device serial.
func NewADB(path, serial string) *ADB {
	if path == "" {
		path = "adb"
	}
	return &ADB{Path: path, Serial: strings.TrimSpace(serial)}
}

// Args builds the adb argument list for a device shell command.
func (a *ADB) Args(shellArgs ...string) []string {
	var args []string
	if a.Serial != "" {
		args = append(args, "-s", a.Serial)
	}
	args = append(args, "shell")
	return append(args, shellArgs...)
}

// Report runs "dumpsys gfxinfo <pkg>".
func (a *ADB) Report(ctx context.Context, pkg string) (string, error) {
	return a.shell(ctx, "dumpsys", "gfxinfo", pkg)
}

// DisplayInfo runs "dumpsys display".
func (a *ADB) DisplayInfo(ctx context.Context) (string, error) {
	return a.shell(ctx, "dumpsys", "display")
}

func (a *ADB) shell(ctx context.Context, shellArgs ...string) (string, error) {
	args := a.Args(shellArgs...)
	cmd := exec.CommandContext(ctx, a.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	Debugf("exec %s %s", a.Path, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   append([]string{a.Path}, args...),
			Output: stderr.String() + stdout.String(),
			Err:    errors.Wrap(err, "adb"),
		}
	}
	return stdout.String(), nil
}
