//go:build !windows

package trash

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns the home trash: $XDG_DATA_HOME/Trash, falling back
// to ~/.local/share/Trash.
func DefaultRoot() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "Trash")
}

func displayName() string {
	return "Trash"
}
