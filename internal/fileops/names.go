package fileops

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name policy reasons.
const (
	NameEmpty     = "empty"
	NameSeparator = "contains a path separator"
	NameReserved  = "reserved name"
	NameTooLong   = "too long"
	NameExists    = "exists"
	NameHidden    = "hidden" // Accepted with a warning
)

const maxNameBytes = 255

// NamePolicy validates a candidate name inside parent. When ok is true a
// non-empty reason is a warning.
type NamePolicy func(parent, name string) (ok bool, reason string)

// NormalizeName returns the NFC form used for names the user types. Names
// taken from existing files are kept byte for byte.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// DefaultNamePolicy rejects empty names, separators, "." and "..", names
// longer than a filesystem component and names taken by a sibling.
// Hidden names are accepted with a warning.
func DefaultNamePolicy(parent, name string) (bool, string) {
	name = NormalizeName(name)
	switch {
	case strings.TrimSpace(name) == "":
		return false, NameEmpty
	case strings.ContainsAny(name, "/\x00") || strings.ContainsRune(name, filepath.Separator):
		return false, NameSeparator
	case name == "." || name == "..":
		return false, NameReserved
	case len(name) > maxNameBytes:
		return false, NameTooLong
	}
	if siblingExists(parent, name) {
		return false, NameExists
	}
	if strings.HasPrefix(name, ".") {
		return true, NameHidden
	}
	return true, ""
}

// siblingExists reports whether parent holds name, comparing normalized
// forms so an NFD sibling blocks its NFC spelling.
func siblingExists(parent, name string) bool {
	if _, err := os.Lstat(filepath.Join(parent, name)); err == nil {
		return true
	}
	if isASCII(name) {
		return false
	}
	entries, err := os.ReadDir(parent)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if NormalizeName(e.Name()) == name {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
