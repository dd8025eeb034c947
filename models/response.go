package models

import "encoding/json"

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Status         string `json:"status"`
	Device         string `json:"device"`
	Model          string `json:"model"`
	Manufacturer   string `json:"manufacturer"`
	Version        string `json:"version"`
	IP             string `json:"ip,omitempty"`
	Port           int    `json:"port,omitempty"`
	EmulatorStatus bool   `json:"emulator_status"`
}

// InfoResponse is returned by GET /api/info
type InfoResponse struct {
	Name           string `json:"name"`
	Model          string `json:"model"`
	Manufacturer   string `json:"manufacturer"`
	Version        string `json:"version"`
	IP             string `json:"ip"`
	Port           int    `json:"port"`
	ConnectionType string `json:"connection_type,omitempty"`
}

// CommandResponse echoes the request body next to the outcome
type CommandResponse struct {
	Success bool            `json:"success"`
	Command json.RawMessage `json:"command"`
}

// Event is pushed to websocket clients
type Event struct {
	Type string      `json:"type"` // command, error
	Data interface{} `json:"data,omitempty"`
}

// NewStatusResponse builds the /api/status payload for the configured profile
func NewStatusResponse(p DeviceProfile, ip string, port int, reachable bool) StatusResponse {
	return StatusResponse{
		Status:         "connected",
		Device:         p.Name,
		Model:          p.Model,
		Manufacturer:   p.Manufacturer,
		Version:        p.Version,
		IP:             ip,
		Port:           port,
		EmulatorStatus: reachable,
	}
}

// NewInfoResponse builds the /api/info payload for the configured profile
func NewInfoResponse(p DeviceProfile, ip string, port int) InfoResponse {
	return InfoResponse{
		Name:           p.Name,
		Model:          p.Model,
		Manufacturer:   p.Manufacturer,
		Version:        p.Version,
		IP:             ip,
		Port:           port,
		ConnectionType: "emulator_bridge",
	}
}

// APIResponse wraps the bridge's own endpoints (keys, history)
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(err string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   err,
	}
}
