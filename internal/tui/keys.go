package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/justyntemme/razorcore/internal/config"
)

type keyMap struct {
	// File operations
	Copy         key.Binding
	Cut          key.Binding
	Paste        key.Binding
	Delete       key.Binding
	Rename       key.Binding
	NewFolder    key.Binding
	Restore      key.Binding
	EmptyTrash   key.Binding
	Undo         key.Binding
	ToggleSelect key.Binding

	// Navigation
	CursorUp   key.Binding
	CursorDown key.Binding
	Open       key.Binding
	Up         key.Binding
	Back       key.Binding
	Forward    key.Binding
	Home       key.Binding
	Trash      key.Binding
	Refresh    key.Binding

	// UI
	Properties key.Binding
	Tags       key.Binding
	Favorite   key.Binding
	History    key.Binding
	Escape     key.Binding
	Quit       key.Binding
}

func newKeyMap(h config.HotkeysConfig) keyMap {
	return keyMap{
		Copy:         binding(h.Copy, "copy"),
		Cut:          binding(h.Cut, "cut"),
		Paste:        binding(h.Paste, "paste"),
		Delete:       binding(h.Delete, "trash"),
		Rename:       binding(h.Rename, "rename"),
		NewFolder:    binding(h.NewFolder, "new folder"),
		Restore:      binding(h.Restore, "restore"),
		EmptyTrash:   binding(h.EmptyTrash, "empty trash"),
		Undo:         binding(h.Undo, "undo"),
		ToggleSelect: binding(h.ToggleSelect, "select"),

		CursorUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		CursorDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:       binding(h.Open, "open"),
		Up:         binding(h.Up, "parent"),
		Back:       key.NewBinding(key.WithKeys("alt+left", "["), key.WithHelp("[", "back")),
		Forward:    key.NewBinding(key.WithKeys("alt+right", "]"), key.WithHelp("]", "forward")),
		Home:       binding(h.Home, "home"),
		Trash:      binding(h.Trash, "trash"),
		Refresh:    binding(h.Refresh, "refresh"),

		Properties: binding(h.Properties, "properties"),
		Tags:       binding(h.Tags, "tags"),
		Favorite:   binding(h.Favorite, "favorite"),
		History:    binding(h.History, "history"),
		Escape:     binding(h.Escape, "cancel"),
		Quit:       binding(h.Quit, "quit"),
	}
}

// binding builds a key binding from a configured shortcut list. The help
// text shows the last alternative, usually the single-letter one.
func binding(shortcuts, help string) key.Binding {
	keys := config.ParseHotkeys(shortcuts)
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	label := keys[len(keys)-1]
	if label == " " {
		label = "space"
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, help))
}

// ShortHelp lists the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Up, k.Copy, k.Cut, k.Paste, k.Delete, k.Rename, k.Undo, k.Trash, k.Quit}
}

// FullHelp lists every binding.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CursorUp, k.CursorDown, k.Open, k.Up, k.Back, k.Forward, k.Home, k.Trash, k.Refresh},
		{k.Copy, k.Cut, k.Paste, k.Delete, k.Rename, k.NewFolder, k.ToggleSelect},
		{k.Restore, k.EmptyTrash, k.Undo, k.Properties, k.Tags, k.Favorite, k.History, k.Escape, k.Quit},
	}
}
