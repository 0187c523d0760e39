package fileops

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/justyntemme/razorcore/internal/entry"
)

// ConflictPolicy decides what Copy does when the target name is taken.
// Move never replaces or renames; a taken name is always a per-item failure.
type ConflictPolicy int

const (
	ConflictFail     ConflictPolicy = iota // Item fails with ReasonCollision
	ConflictKeepBoth                       // Copy as "name (copy).ext", "name (copy 2).ext", ...
)

// ParseConflictPolicy maps a config value to a policy; unknown values fail.
func ParseConflictPolicy(s string) ConflictPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep-both", "keepboth", "keep_both":
		return ConflictKeepBoth
	default:
		return ConflictFail
	}
}

func (p ConflictPolicy) String() string {
	if p == ConflictKeepBoth {
		return "keep-both"
	}
	return "fail"
}

// keepBothName returns the first free "(copy)" variant of name inside dir.
func keepBothName(dir, name string, isDir bool) string {
	stem, ext := name, ""
	if !isDir {
		stem, ext = entry.SplitExtension(name)
		if ext != "" {
			ext = "." + ext
		}
	}
	for i := 1; ; i++ {
		var candidate string
		if i == 1 {
			candidate = fmt.Sprintf("%s (copy)%s", stem, ext)
		} else {
			candidate = fmt.Sprintf("%s (copy %d)%s", stem, i, ext)
		}
		if !pathExists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}
