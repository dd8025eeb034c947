package models

import "encoding/json"

// Command types accepted on /api/command and the websocket channel
const (
	CommandKey    = "key"
	CommandText   = "text"
	CommandLaunch = "launch"
)

// Command is a single remote-control instruction
type Command struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`    // key name, e.g. KEYCODE_HOME
	Text    string `json:"text,omitempty"`    // literal text for input
	Package string `json:"package,omitempty"` // app package to launch
}

// ParseCommand decodes raw JSON into a Command.
// A body that is valid JSON but not a command object returns an error.
func ParseCommand(raw []byte) (Command, error) {
	var cmd Command
	err := json.Unmarshal(raw, &cmd)
	return cmd, err
}

// UnmarshalJSON accepts any JSON value for the command fields.
// Strings are taken as is, null means absent, and numbers, booleans or
// objects keep their JSON literal, so {"code":3} becomes the unknown key "3".
func (c *Command) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Command{
		Type:    fieldString(fields["type"]),
		Code:    fieldString(fields["code"]),
		Text:    fieldString(fields["text"]),
		Package: fieldString(fields["package"]),
	}
	return nil
}

func fieldString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Result is the outcome of executing a Command on the target device
type Result struct {
	Success bool   `json:"success"`
	Target  string `json:"target,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Succeeded builds a successful result for the given device
func Succeeded(target string) Result {
	return Result{Success: true, Target: target}
}

// Failed builds a failed result with a diagnostic for the operator log
func Failed(target, detail string) Result {
	return Result{Success: false, Target: target, Detail: detail}
}

// HistoryEntry is one executed command recorded in the journal
type HistoryEntry struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"` // http, ws
	Command   Command `json:"command"`
	Success   bool    `json:"success"`
	Target    string  `json:"target,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	Timestamp int64   `json:"timestamp"`
}
