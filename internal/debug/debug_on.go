//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/logging"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP     Category = "APP"     // Orchestration, wiring, lifecycle
	FS      Category = "FS"      // Listing fetches
	PREVIEW Category = "PREVIEW" // Preview requests, token checks, delivery
	THUMB   Category = "THUMB"   // Thumbnail cache and generation
	FILEOP  Category = "FILEOP"  // Copy, move, rename, trash, restore
	UNDO    Category = "UNDO"    // Undo queue and reversal
	TRASH   Category = "TRASH"   // Trash provider
	STORE   Category = "STORE"   // Journal and settings database
	UI      Category = "UI"      // Presentation sinks

	// Detailed subcategories (use sparingly - can be verbose)
	SAMPLE   Category = "SAMPLE"   // Directory child sampling (very verbose)
	FS_ENTRY Category = "FS_ENTRY" // Individual entry processing (very verbose)
	WATCH    Category = "WATCH"    // fsnotify events
)

var (
	// enabledCategories controls which categories are active
	// By default, all main categories are enabled
	enabledCategories = map[Category]bool{
		APP:     true,
		FS:      true,
		PREVIEW: true,
		THUMB:   true,
		FILEOP:  true,
		UNDO:    true,
		TRASH:   true,
		STORE:   true,
		UI:      true,
		// Verbose categories disabled by default
		SAMPLE:   false,
		FS_ENTRY: false,
		WATCH:    false,
	}
	categoryMu sync.RWMutex
)

func init() {
	// Check environment variable for category overrides
	// Format: RAZOR_DEBUG=APP,FS,PREVIEW or RAZOR_DEBUG=all or RAZOR_DEBUG=none
	if env := os.Getenv("RAZOR_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				cat = strings.TrimSpace(cat)
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	logging.L().Debug(fmt.Sprintf(format, args...), zap.String("category", string(cat)))
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}
