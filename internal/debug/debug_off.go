//go:build !debug

// Package debug provides a centralized, categorized debug logging system.
// This is the no-op version for release builds.
package debug

// Enabled indicates whether debug logging is active
const Enabled = false

// Category represents a debug logging category
type Category string

const (
	APP      Category = "APP"
	FS       Category = "FS"
	PREVIEW  Category = "PREVIEW"
	THUMB    Category = "THUMB"
	FILEOP   Category = "FILEOP"
	UNDO     Category = "UNDO"
	TRASH    Category = "TRASH"
	STORE    Category = "STORE"
	UI       Category = "UI"
	SAMPLE   Category = "SAMPLE"
	FS_ENTRY Category = "FS_ENTRY"
	WATCH    Category = "WATCH"
)

// Log is a no-op in release builds
func Log(cat Category, format string, args ...interface{}) {}

// Enable is a no-op in release builds
func Enable(cat Category) {}

// Disable is a no-op in release builds
func Disable(cat Category) {}

// IsEnabled always returns false in release builds
func IsEnabled(cat Category) bool { return false }

// EnableAll is a no-op in release builds
func EnableAll() {}
