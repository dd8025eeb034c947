package adb

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"tvbridge/models"
)

// ErrNotFound is returned when no adb candidate answers `adb version`
var ErrNotFound = errors.New("adb not found")

// Runner executes an external command and returns its stdout.
// A nonzero exit status, a missing binary and a context timeout are all errors.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), errors.Wrapf(ctx.Err(), "%s timed out", name)
		}
		return stdout.Bytes(), errors.Wrapf(err, "stderr: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Options configures an ADBClient
type Options struct {
	Path           string        // checked before the default candidates
	CommandTimeout time.Duration // bound for shell invocations
	ProbeTimeout   time.Duration // bound for version probes and device listing
	Runner         Runner
}

// ADBClient wraps ADB command execution
type ADBClient struct {
	runner         Runner
	candidates     []string
	commandTimeout time.Duration
	probeTimeout   time.Duration

	mu   sync.Mutex
	path string // resolved once, kept for the process lifetime
}

// NewADBClient creates a new ADB client
func NewADBClient(opts Options) *ADBClient {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}

	var candidates []string
	if opts.Path != "" {
		candidates = append(candidates, opts.Path)
	}
	candidates = append(candidates, DefaultCandidates()...)

	return &ADBClient{
		runner:         opts.Runner,
		candidates:     candidates,
		commandTimeout: opts.CommandTimeout,
		probeTimeout:   opts.ProbeTimeout,
	}
}

// DefaultCandidates lists where adb is usually found: PATH first, then SDK installs
func DefaultCandidates() []string {
	candidates := []string{"adb"}
	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if root := os.Getenv(env); root != "" {
			candidates = append(candidates, filepath.Join(root, "platform-tools", binaryName()))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "Android", "Sdk", "platform-tools", binaryName()))
	}
	return candidates
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "adb.exe"
	}
	return "adb"
}

// Path resolves the adb binary by probing the candidates in order.
// A successful probe is cached; a failed round is retried on the next call.
func (c *ADBClient) Path(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path != "" {
		return c.path, nil
	}

	for _, candidate := range c.candidates {
		probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		_, err := c.runner.Run(probeCtx, candidate, "version")
		cancel()
		if err == nil {
			log.Printf("🔧 Using adb at %s", candidate)
			c.path = candidate
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// Version returns the first line of `adb version`
func (c *ADBClient) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.probeTimeout, "version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// ListDevices returns every device adb reports, whatever its state
func (c *ADBClient) ListDevices(ctx context.Context) ([]models.Device, error) {
	out, err := c.run(ctx, c.probeTimeout, "devices")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	return ParseDeviceList(string(out)), nil
}

// ParseDeviceList parses the output of 'adb devices'
func ParseDeviceList(output string) []models.Device {
	var devices []models.Device

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		// Skip header line, daemon notices and empty lines
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}

		// Expected format: <serial>\t<state>
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		devices = append(devices, models.Device{
			Serial: parts[0],
			State:  parts[1],
		})
	}

	return devices
}

// SendKey sends a key event to the device
func (c *ADBClient) SendKey(ctx context.Context, deviceID, keycode string) error {
	if _, err := c.shell(ctx, deviceID, "input", "keyevent", keycode); err != nil {
		return errors.Wrap(err, "key event failed")
	}
	return nil
}

// SendText sends text input to the device.
// The text is wrapped in double quotes for the device shell and not otherwise escaped.
func (c *ADBClient) SendText(ctx context.Context, deviceID, text string) error {
	if _, err := c.shell(ctx, deviceID, "input", "text", `"`+text+`"`); err != nil {
		return errors.Wrap(err, "text input failed")
	}
	return nil
}

// StartActivity runs `am start` with the given intent arguments
func (c *ADBClient) StartActivity(ctx context.Context, deviceID string, args ...string) error {
	shellArgs := append([]string{"am", "start"}, args...)
	if _, err := c.shell(ctx, deviceID, shellArgs...); err != nil {
		return errors.Wrap(err, "activity start failed")
	}
	return nil
}

// Monkey launches a package by injecting a single monkey event
func (c *ADBClient) Monkey(ctx context.Context, deviceID, packageName string) error {
	if _, err := c.shell(ctx, deviceID, "monkey", "-p", packageName, "1"); err != nil {
		return errors.Wrap(err, "monkey launch failed")
	}
	return nil
}

func (c *ADBClient) shell(ctx context.Context, deviceID string, args ...string) ([]byte, error) {
	// Build full command: adb -s <deviceID> shell <args...>
	fullArgs := append([]string{"-s", deviceID, "shell"}, args...)
	return c.run(ctx, c.commandTimeout, fullArgs...)
}

func (c *ADBClient) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	path, err := c.Path(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.runner.Run(runCtx, path, args...)
}
