package models

// StateDevice is the adb state of a device that is online and ready
const StateDevice = "device"

// Device is one entry of `adb devices` output
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"` // device, offline, unauthorized
}

// Online reports whether adb considers the device ready for commands
func (d Device) Online() bool {
	return d.State == StateDevice
}

// DeviceProfile describes the bridged TV for /api/status and /api/info
type DeviceProfile struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Version      string `json:"version"`
}
