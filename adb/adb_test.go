package adb

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"tvbridge/models"
)

type call struct {
	name     string
	args     []string
	deadline time.Time
	bounded  bool
}

// fakeRunner records every invocation and answers from a script
type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	handle func(name string, args []string) ([]byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	deadline, bounded := ctx.Deadline()
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args, deadline: deadline, bounded: bounded})
	f.mu.Unlock()
	if f.handle == nil {
		return nil, nil
	}
	return f.handle(name, args)
}

func newTestClient(r Runner) *ADBClient {
	c := NewADBClient(Options{Runner: r, CommandTimeout: time.Second, ProbeTimeout: time.Second})
	c.candidates = []string{"adb", "/sdk/platform-tools/adb"}
	return c
}

func TestParseDeviceList(t *testing.T) {
	output := "* daemon not running; starting now at tcp:5037\n" +
		"* daemon started successfully\n" +
		"List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"emulator-5556\toffline\n" +
		"\n" +
		"192.168.1.20:5555\tdevice\n" +
		"garbage\n"

	got := ParseDeviceList(output)
	want := []models.Device{
		{Serial: "emulator-5554", State: "device"},
		{Serial: "emulator-5556", State: "offline"},
		{Serial: "192.168.1.20:5555", State: "device"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDeviceList() = %+v, want %+v", got, want)
	}
}

func TestParseDeviceListEmpty(t *testing.T) {
	if got := ParseDeviceList("List of devices attached\n\n"); len(got) != 0 {
		t.Errorf("expected no devices, got %+v", got)
	}
}

func TestPathProbesCandidatesInOrderAndCaches(t *testing.T) {
	r := &fakeRunner{handle: func(name string, args []string) ([]byte, error) {
		if name == "adb" {
			return nil, errors.New("executable file not found in $PATH")
		}
		return []byte("Android Debug Bridge version 1.0.41\n"), nil
	}}
	c := newTestClient(r)

	for i := 0; i < 3; i++ {
		path, err := c.Path(context.Background())
		if err != nil {
			t.Fatalf("Path() error: %v", err)
		}
		if path != "/sdk/platform-tools/adb" {
			t.Fatalf("Path() = %q", path)
		}
	}

	// adb (fail) + sdk (ok) only once
	if len(r.calls) != 2 {
		t.Errorf("expected 2 probe calls, got %d: %+v", len(r.calls), r.calls)
	}
}

func TestPathNotFoundIsRetried(t *testing.T) {
	installed := false
	r := &fakeRunner{handle: func(name string, args []string) ([]byte, error) {
		if installed && name == "adb" {
			return nil, nil
		}
		return nil, errors.New("not found")
	}}
	c := newTestClient(r)

	if _, err := c.Path(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	installed = true
	path, err := c.Path(context.Background())
	if err != nil || path != "adb" {
		t.Fatalf("Path() after install = %q, %v", path, err)
	}
}

func TestConfiguredPathTriedFirst(t *testing.T) {
	r := &fakeRunner{}
	c := NewADBClient(Options{Runner: r, Path: "/opt/adb"})

	path, err := c.Path(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if path != "/opt/adb" {
		t.Errorf("Path() = %q, want /opt/adb", path)
	}
}

func TestShellCommands(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *ADBClient) error
		want []string
	}{
		{
			name: "keyevent",
			run:  func(c *ADBClient) error { return c.SendKey(context.Background(), "emulator-5556", "3") },
			want: []string{"-s", "emulator-5556", "shell", "input", "keyevent", "3"},
		},
		{
			name: "text is quoted",
			run:  func(c *ADBClient) error { return c.SendText(context.Background(), "emulator-5556", "hello world") },
			want: []string{"-s", "emulator-5556", "shell", "input", "text", `"hello world"`},
		},
		{
			name: "am start",
			run: func(c *ADBClient) error {
				return c.StartActivity(context.Background(), "emulator-5554", "-a", "android.settings.SETTINGS")
			},
			want: []string{"-s", "emulator-5554", "shell", "am", "start", "-a", "android.settings.SETTINGS"},
		},
		{
			name: "monkey",
			run:  func(c *ADBClient) error { return c.Monkey(context.Background(), "emulator-5554", "com.example.app") },
			want: []string{"-s", "emulator-5554", "shell", "monkey", "-p", "com.example.app", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			c := newTestClient(r)
			if err := tt.run(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			last := r.calls[len(r.calls)-1]
			if last.name != "adb" {
				t.Errorf("ran %q, want adb", last.name)
			}
			if !reflect.DeepEqual(last.args, tt.want) {
				t.Errorf("args = %q, want %q", last.args, tt.want)
			}
		})
	}
}

func TestShellFailureIsWrapped(t *testing.T) {
	r := &fakeRunner{handle: func(name string, args []string) ([]byte, error) {
		if len(args) > 0 && args[0] == "version" {
			return nil, nil
		}
		return nil, errors.New("exit status 1")
	}}
	c := newTestClient(r)

	err := c.SendKey(context.Background(), "emulator-5554", "26")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "key event failed") || !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestVersion(t *testing.T) {
	r := &fakeRunner{handle: func(name string, args []string) ([]byte, error) {
		return []byte("Android Debug Bridge version 1.0.41\nVersion 34.0.5\n"), nil
	}}
	c := newTestClient(r)

	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != "Android Debug Bridge version 1.0.41" {
		t.Errorf("Version() = %q", v)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-real-adb-binary")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestInvocationsAreBounded(t *testing.T) {
	r := &fakeRunner{handle: func(name string, args []string) ([]byte, error) {
		if args[0] == "devices" {
			return []byte("List of devices attached\nemulator-5556\tdevice\n"), nil
		}
		return nil, nil
	}}
	c := NewADBClient(Options{Runner: r, CommandTimeout: 30 * time.Second, ProbeTimeout: 2 * time.Second})
	c.candidates = []string{"adb"}

	if _, err := c.ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices() error: %v", err)
	}
	if err := c.SendKey(context.Background(), "emulator-5556", "3"); err != nil {
		t.Fatalf("SendKey() error: %v", err)
	}

	// version probe, devices, keyevent
	if len(r.calls) != 3 {
		t.Fatalf("expected 3 calls, got %+v", r.calls)
	}
	tests := []struct {
		name string
		call call
		min  time.Duration
		max  time.Duration
	}{
		{name: "version", call: r.calls[0], min: 0, max: 2 * time.Second},
		{name: "devices", call: r.calls[1], min: 0, max: 2 * time.Second},
		{name: "keyevent", call: r.calls[2], min: 2 * time.Second, max: 30 * time.Second},
	}
	for _, tt := range tests {
		if !tt.call.bounded {
			t.Errorf("%s: no deadline on context", tt.name)
			continue
		}
		left := time.Until(tt.call.deadline)
		if left <= tt.min || left > tt.max {
			t.Errorf("%s: deadline in %v, want within (%v, %v]", tt.name, left, tt.min, tt.max)
		}
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no sleep binary on windows")
	}
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not on PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, "sleep", "5")
	if err == nil {
		t.Fatal("expected error when the deadline passes")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run returned after %v, process was not stopped", elapsed)
	}
}
