package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tvbridge/models"
)

// SettingsPackage is launched through the settings intent instead of the launcher
const SettingsPackage = "com.android.tv.settings"

// Controller issues control invocations against a device
type Controller interface {
	SendKey(ctx context.Context, deviceID, keycode string) error
	SendText(ctx context.Context, deviceID, text string) error
	StartActivity(ctx context.Context, deviceID string, args ...string) error
	Monkey(ctx context.Context, deviceID, packageName string) error
}

// Broadcaster pushes executed commands to live clients (interface to avoid import cycle)
type Broadcaster interface {
	BroadcastToAll(message interface{})
}

// ActionDispatcher translates remote commands into device invocations
type ActionDispatcher struct {
	deviceManager *DeviceManager
	controller    Controller
	journal       *Journal    // optional
	broadcaster   Broadcaster // optional
}

func NewActionDispatcher(dm *DeviceManager, controller Controller) *ActionDispatcher {
	return &ActionDispatcher{
		deviceManager: dm,
		controller:    controller,
	}
}

// WithJournal records every dispatched command
func (d *ActionDispatcher) WithJournal(j *Journal) *ActionDispatcher {
	d.journal = j
	return d
}

// WithBroadcaster publishes every dispatched command
func (d *ActionDispatcher) WithBroadcaster(b Broadcaster) *ActionDispatcher {
	d.broadcaster = b
	return d
}

// Dispatch executes a command on behalf of a client and records the outcome.
// source names the channel the command came in on (http, ws).
func (d *ActionDispatcher) Dispatch(ctx context.Context, source string, cmd models.Command) models.Result {
	result := d.Execute(ctx, cmd)

	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Source:    source,
		Command:   cmd,
		Success:   result.Success,
		Target:    result.Target,
		Detail:    result.Detail,
		Timestamp: time.Now().Unix(),
	}

	if d.journal != nil {
		if err := d.journal.Record(entry); err != nil {
			log.Printf("Failed to record command %s: %v", entry.ID, err)
		}
	}
	if d.broadcaster != nil {
		d.broadcaster.BroadcastToAll(models.Event{Type: "command", Data: entry})
	}

	return result
}

// Execute runs a single command against the current target device.
// It never returns an error or panics; failures are reported in the Result.
func (d *ActionDispatcher) Execute(ctx context.Context, cmd models.Command) (result models.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("✗ Error executing command %s: %v", cmd.Type, r)
			result = models.Failed(result.Target, fmt.Sprintf("panic: %v", r))
		}
	}()

	target, err := d.deviceManager.Target(ctx)
	if err != nil {
		log.Printf("✗ No active emulator for %s command: %v", cmd.Type, err)
		return models.Failed("", err.Error())
	}

	if err := d.executeAction(ctx, target, cmd); err != nil {
		log.Printf("✗ %s command failed on %s: %v", cmd.Type, target, err)
		return models.Failed(target, err.Error())
	}
	return models.Succeeded(target)
}

func (d *ActionDispatcher) executeAction(ctx context.Context, target string, cmd models.Command) error {
	switch cmd.Type {
	case models.CommandKey:
		code := ResolveKeyCode(cmd.Code)
		log.Printf("Sending key: %s (%s) to %s", cmd.Code, code, target)
		if err := d.controller.SendKey(ctx, target, code); err != nil {
			return err
		}
		log.Printf("✓ Key %s sent successfully", cmd.Code)
		return nil

	case models.CommandText:
		log.Printf("Sending text: %s to %s", cmd.Text, target)
		return d.controller.SendText(ctx, target, cmd.Text)

	case models.CommandLaunch:
		return d.launch(ctx, target, cmd.Package)

	default:
		return fmt.Errorf("unknown command type: %q", cmd.Type)
	}
}

// launch starts an app, falling back to monkey once if the intent fails
func (d *ActionDispatcher) launch(ctx context.Context, target, pkg string) error {
	if pkg == "" {
		return fmt.Errorf("launch command without package")
	}
	log.Printf("Launching app: %s on %s", pkg, target)

	var err error
	if pkg == SettingsPackage {
		err = d.controller.StartActivity(ctx, target, "-a", "android.settings.SETTINGS")
	} else {
		err = d.controller.StartActivity(ctx, target,
			"-a", "android.intent.action.MAIN",
			"-c", "android.intent.category.LAUNCHER",
			pkg)
	}
	if err == nil {
		log.Printf("✓ App %s launched successfully", pkg)
		return nil
	}

	log.Printf("✗ Failed to launch app: %v, trying monkey for %s...", err, pkg)
	if monkeyErr := d.controller.Monkey(ctx, target, pkg); monkeyErr != nil {
		return fmt.Errorf("launch failed: %v; monkey fallback failed: %w", err, monkeyErr)
	}
	log.Printf("✓ App %s launched via monkey", pkg)
	return nil
}
