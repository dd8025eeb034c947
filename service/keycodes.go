package service

import "sort"

// DefaultKeyCode is used for names missing from the table (DPAD_CENTER / select)
const DefaultKeyCode = "23"

// Android keycodes understood by the TV remote
var keyCodes = map[string]string{
	"KEYCODE_POWER":              "26",
	"KEYCODE_HOME":               "3",
	"KEYCODE_MENU":               "82",
	"KEYCODE_BACK":               "4",
	"KEYCODE_DPAD_UP":            "19",
	"KEYCODE_DPAD_DOWN":          "20",
	"KEYCODE_DPAD_LEFT":          "21",
	"KEYCODE_DPAD_RIGHT":         "22",
	"KEYCODE_DPAD_CENTER":        "23",
	"KEYCODE_VOLUME_UP":          "24",
	"KEYCODE_VOLUME_DOWN":        "25",
	"KEYCODE_VOLUME_MUTE":        "164",
	"KEYCODE_MEDIA_PLAY_PAUSE":   "85",
	"KEYCODE_MEDIA_PLAY":         "126",
	"KEYCODE_MEDIA_PAUSE":        "127",
	"KEYCODE_MEDIA_STOP":         "86",
	"KEYCODE_MEDIA_NEXT":         "87",
	"KEYCODE_MEDIA_PREVIOUS":     "88",
	"KEYCODE_MEDIA_REWIND":       "89",
	"KEYCODE_MEDIA_FAST_FORWARD": "90",
	"KEYCODE_SEARCH":             "84",
	"KEYCODE_APP_SWITCH":         "187",
}

// ResolveKeyCode maps a key name to its numeric Android keycode.
// Unknown names resolve to DefaultKeyCode.
func ResolveKeyCode(name string) string {
	if code, ok := keyCodes[name]; ok {
		return code
	}
	return DefaultKeyCode
}

// KeyBinding pairs a key name with its keycode
type KeyBinding struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// KnownKeys returns the key table sorted by name
func KnownKeys() []KeyBinding {
	keys := make([]KeyBinding, 0, len(keyCodes))
	for name, code := range keyCodes {
		keys = append(keys, KeyBinding{Name: name, Code: code})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}
