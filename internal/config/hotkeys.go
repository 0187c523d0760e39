package config

import (
	"strings"
)

// HotkeysConfig holds keyboard shortcuts as written by users, e.g.
// "Ctrl+Z" or "F2". Several alternatives may be given separated by commas.
type HotkeysConfig struct {
	// File operations
	Copy         string `json:"copy" yaml:"copy"`
	Cut          string `json:"cut" yaml:"cut"`
	Paste        string `json:"paste" yaml:"paste"`
	Delete       string `json:"delete" yaml:"delete"` // Move to trash
	Rename       string `json:"rename" yaml:"rename"`
	NewFolder    string `json:"newFolder" yaml:"newFolder"`
	Restore      string `json:"restore" yaml:"restore"`
	EmptyTrash   string `json:"emptyTrash" yaml:"emptyTrash"`
	Undo         string `json:"undo" yaml:"undo"`
	ToggleSelect string `json:"toggleSelect" yaml:"toggleSelect"`

	// Navigation
	Open    string `json:"open" yaml:"open"`
	Up      string `json:"up" yaml:"up"`
	Home    string `json:"home" yaml:"home"`
	Trash   string `json:"trash" yaml:"trash"` // Show the trash
	Refresh string `json:"refresh" yaml:"refresh"`

	// UI
	Properties string `json:"properties" yaml:"properties"`
	Tags       string `json:"tags" yaml:"tags"` // Show a tag view
	Favorite   string `json:"favorite" yaml:"favorite"`
	History    string `json:"history" yaml:"history"`
	Escape     string `json:"escape" yaml:"escape"`
	Quit       string `json:"quit" yaml:"quit"`
}

// DefaultHotkeys returns the default keyboard shortcuts.
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Copy:         "Ctrl+C, y",
		Cut:          "Ctrl+X, x",
		Paste:        "Ctrl+V, p",
		Delete:       "Delete, d",
		Rename:       "F2, r",
		NewFolder:    "Ctrl+N, n",
		Restore:      "R",
		EmptyTrash:   "E",
		Undo:         "Ctrl+Z, u",
		ToggleSelect: "Space",

		Open:    "Enter, Right, l",
		Up:      "Backspace, Left, h",
		Home:    "~",
		Trash:   "t",
		Refresh: "F5",

		Properties: "Alt+Enter, i",
		Tags:       "#",
		Favorite:   "f",
		History:    "H",
		Escape:     "Escape",
		Quit:       "Ctrl+Q, q",
	}
}

// ParseHotkeys splits a shortcut list and converts each entry to the key
// names reported by the terminal front end ("ctrl+z", "f2", "delete", " ").
func ParseHotkeys(s string) []string {
	var keys []string
	for _, alt := range strings.Split(s, ",") {
		if k := ParseHotkey(alt); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ParseHotkey converts one shortcut like "Ctrl+Shift+N" to a terminal key
// name. Single printable characters keep their case, since "R" and "r" are
// different keys in a terminal.
func ParseHotkey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s == "+" {
		return "+"
	}

	var mods []string
	var rawKeyPart string
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "ctrl", "control":
			mods = append(mods, "ctrl")
		case "shift":
			mods = append(mods, "shift")
		case "alt", "option", "meta":
			mods = append(mods, "alt")
		default:
			rawKeyPart = part
		}
	}

	name := parseKeyName(rawKeyPart, len(mods) > 0)
	if name == "" {
		return ""
	}
	return strings.Join(append(mods, name), "+")
}

// parseKeyName converts a key string to its terminal name.
func parseKeyName(s string, modified bool) string {
	if len([]rune(s)) == 1 {
		if modified {
			return strings.ToLower(s)
		}
		return s
	}

	switch strings.ToLower(s) {
	case "up", "uparrow":
		return "up"
	case "down", "downarrow":
		return "down"
	case "left", "leftarrow":
		return "left"
	case "right", "rightarrow":
		return "right"
	case "pageup", "pgup":
		return "pgup"
	case "pagedown", "pgdn", "pgdown":
		return "pgdown"
	case "enter", "return":
		return "enter"
	case "space", "spacebar":
		return " "
	case "backspace", "back":
		return "backspace"
	case "delete", "del":
		return "delete"
	case "escape", "esc":
		return "esc"
	case "insert", "ins":
		return "insert"
	default:
		// f1..f12, home, end, tab and custom names pass through
		return strings.ToLower(s)
	}
}
