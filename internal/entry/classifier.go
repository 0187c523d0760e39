package entry

import (
	"strings"
)

// Classifier turns listing metadata into an Entry. The suppression set names
// content types whose dots are not extensions (executables, READMEs, ...).
type Classifier struct {
	suppress map[string]struct{}
}

// NewClassifier creates a classifier with the given extension suppression set.
func NewClassifier(suppressed []string) *Classifier {
	c := &Classifier{suppress: make(map[string]struct{}, len(suppressed))}
	for _, ct := range suppressed {
		c.suppress[strings.ToLower(ct)] = struct{}{}
	}
	return c
}

// Classify derives kind, color, icon and extension. Malformed metadata (no
// content type, no name) falls back to the generic unknown category.
func (c *Classifier) Classify(m Metadata) Entry {
	e := Entry{Metadata: m}

	if strings.TrimSpace(e.ContentType) == "" || !strings.Contains(e.ContentType, "/") {
		e.ContentType = UnknownType
		e.Icon = GenericIcon
		e.Kind = File
		if m.Trashed {
			e.Kind = TrashedItem
		}
		e.Color = ColorGray
		e.Stem = m.DisplayName
		return e
	}

	e.ContentType = strings.ToLower(e.ContentType)
	if e.Icon == "" {
		e.Icon = SymbolicIcon(e.ContentType)
	}
	e.Color = ColorFor(e.ContentType, e.Icon)

	switch {
	case m.Trashed:
		e.Kind = TrashedItem
	case e.ContentType == DirectoryType:
		e.Kind = Directory
	default:
		e.Kind = File
	}

	if e.ContentType == DirectoryType {
		e.Stem = m.DisplayName
		return e
	}
	if _, ok := c.suppress[e.ContentType]; ok {
		e.Stem = m.DisplayName
		return e
	}
	e.Stem, e.Extension = SplitExtension(m.DisplayName)
	e.Extension = strings.ToUpper(e.Extension)
	return e
}

// SplitExtension splits a display name at its last dot. A leading dot alone
// (".bashrc") and a trailing dot ("name.") do not form an extension.
func SplitExtension(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
