//go:build windows

package trash

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns a per-user trash under %LOCALAPPDATA%. The shell
// Recycle Bin has no restore API, so razor keeps its own.
func DefaultRoot() string {
	dir := os.Getenv("LOCALAPPDATA")
	if dir == "" {
		var err error
		if dir, err = os.UserCacheDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "razor", "Trash")
}

func displayName() string {
	return "Recycle Bin"
}
