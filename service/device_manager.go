package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"tvbridge/models"
)

// EmulatorPrefix is the serial prefix adb gives to local emulators
const EmulatorPrefix = "emulator-"

// ErrNoEmulator is returned when no ready emulator is attached
var ErrNoEmulator = errors.New("no emulator found")

// DeviceLister lists the devices currently attached to adb
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
}

// DeviceManager picks the emulator that receives commands.
// Devices are listed fresh on every call; nothing is cached.
type DeviceManager struct {
	lister    DeviceLister
	preferred string
}

// NewDeviceManager creates a device manager that prefers the given emulator serial
func NewDeviceManager(lister DeviceLister, preferred string) *DeviceManager {
	return &DeviceManager{
		lister:    lister,
		preferred: preferred,
	}
}

// Target returns the serial of the emulator that should receive commands
func (m *DeviceManager) Target(ctx context.Context) (string, error) {
	devices, err := m.lister.ListDevices(ctx)
	if err != nil {
		return "", err
	}

	target := SelectTarget(devices, m.preferred)
	if target == "" {
		return "", ErrNoEmulator
	}
	return target, nil
}

// Reachable reports whether any ready emulator is attached
func (m *DeviceManager) Reachable(ctx context.Context) bool {
	target, err := m.Target(ctx)
	if err != nil {
		log.Printf("⚠️ Emulator check failed: %v", err)
		return false
	}
	log.Printf("📺 Emulator %s found and ready", target)
	return true
}

// SelectTarget filters devices to ready emulators and picks one:
// the preferred serial when present, else the lexicographically greatest.
// Returns "" when there is no candidate.
func SelectTarget(devices []models.Device, preferred string) string {
	var emulators []string
	for _, d := range devices {
		if !strings.HasPrefix(d.Serial, EmulatorPrefix) || !d.Online() {
			continue
		}
		if preferred != "" && d.Serial == preferred {
			return d.Serial
		}
		emulators = append(emulators, d.Serial)
	}

	if len(emulators) == 0 {
		return ""
	}

	// TV emulators usually sit on the higher ports (5556+)
	sort.Sort(sort.Reverse(sort.StringSlice(emulators)))
	return emulators[0]
}
