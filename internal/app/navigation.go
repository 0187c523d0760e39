package app

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/trash"
)

const maxHistorySize = 100

// History is the back/forward list of visited locations. Locations are
// directory paths, trash.Location or tag views.
type History struct {
	entries []string
	index   int
}

func NewHistory() *History {
	return &History{index: -1}
}

// Current returns the current location, "" before the first Visit.
func (h *History) Current() string {
	if h.index < 0 {
		return ""
	}
	return h.entries[h.index]
}

// Visit makes loc the current location, dropping forward history.
func (h *History) Visit(loc string) {
	if h.Current() == loc {
		return
	}
	// Truncate forward history if we're not at the end
	if h.index >= 0 && h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, loc)
	h.index = len(h.entries) - 1

	if len(h.entries) > maxHistorySize {
		excess := len(h.entries) - maxHistorySize
		h.entries = h.entries[excess:]
		h.index = max(0, h.index-excess)
	}
}

// Up moves to the parent of the current location and returns it. From the
// trash or a tag view it goes back to where the user came from.
func (h *History) Up() (string, bool) {
	cur := h.Current()
	if _, tagged := listing.ParseTagLocation(cur); tagged || cur == trash.Location {
		return h.Back()
	}
	parent := filepath.Dir(cur)
	if cur == "" || parent == cur {
		return "", false // Already at root
	}
	if h.index > 0 && h.entries[h.index-1] == parent {
		h.index--
	} else {
		h.entries = append(h.entries[:h.index], append([]string{parent}, h.entries[h.index:]...)...)
	}
	return parent, true
}

// Back moves one step back in history.
func (h *History) Back() (string, bool) {
	if h.index <= 0 {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves one step forward in history.
func (h *History) Forward() (string, bool) {
	if h.index >= len(h.entries)-1 {
		return "", false
	}
	h.index++
	return h.entries[h.index], true
}

// ExpandPath expands and normalizes a typed location:
// ~ for the home directory, relative paths against current, and the
// trash URI and tag views as is.
func ExpandPath(input, current string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	if input == trash.Location || strings.EqualFold(input, "trash:") {
		return trash.Location
	}
	if _, ok := listing.ParseTagLocation(input); ok {
		return input
	}

	if strings.HasPrefix(input, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			if input == "~" {
				return home
			}
			if strings.HasPrefix(input, "~/") || strings.HasPrefix(input, `~\`) {
				return filepath.Clean(filepath.Join(home, input[2:]))
			}
		}
	}

	if isAbsolutePath(input) {
		return filepath.Clean(input)
	}
	return filepath.Clean(filepath.Join(current, input))
}

// isAbsolutePath checks if a path is absolute, handling both Unix and Windows paths
func isAbsolutePath(path string) bool {
	if len(path) == 0 {
		return false
	}
	if path[0] == '/' {
		return true
	}
	if runtime.GOOS == "windows" {
		// Drive letter paths: C:\, D:\, C:/, etc.
		if len(path) >= 2 && isLetter(path[0]) && path[1] == ':' {
			return true
		}
		// UNC paths: \\server\share
		if len(path) >= 2 && path[0] == '\\' && path[1] == '\\' {
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
