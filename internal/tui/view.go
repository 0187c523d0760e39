package tui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/trash"
)

const (
	previewWidth  = 34
	previewHeight = 14
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("57"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dirStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Padding(0, 1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).
			Width(previewWidth).Padding(0, 1)
	modalStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 2)
)

// termColors maps entry color categories to terminal colors.
var termColors = map[entry.Color]lipgloss.Color{
	entry.ColorGray:   "245",
	entry.ColorBlue:   "33",
	entry.ColorTeal:   "37",
	entry.ColorGreen:  "34",
	entry.ColorYellow: "220",
	entry.ColorOrange: "208",
	entry.ColorRed:    "196",
	entry.ColorPink:   "205",
	entry.ColorPurple: "135",
	entry.ColorSlate:  "103",
}

func (m *Model) View() string {
	title := m.loc
	if m.inTrash() {
		title = trash.DisplayName()
	} else if tags, ok := listing.ParseTagLocation(m.loc); ok {
		title = "Tags: " + strings.Join(tags, ", ")
	}
	head := headerStyle.Render("razor  " + title)
	if n := len(m.selected); n > 0 {
		head += faintStyle.Render(fmt.Sprintf("  %d selected", n))
	}
	if len(m.clip.entries) > 0 {
		verb := "copy"
		if m.clip.cut {
			verb = "move"
		}
		head += faintStyle.Render(fmt.Sprintf("  [%s %s]", verb, items(len(m.clip.entries))))
	}

	listHeight := max(3, m.height-5)
	listWidth := max(20, m.width-previewWidth-4)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(m.viewList(listWidth, listHeight)),
		paneStyle.Render(m.viewPreview()),
	)

	status := m.status
	switch m.mode {
	case modeRename, modeNewFolder, modeTags:
		status = m.input.View()
	case modeConfirmEmpty:
		status = fmt.Sprintf("Permanently delete everything in %s? (y/N)", trash.DisplayName())
	case modeConfirmDelete:
		status = fmt.Sprintf("Permanently delete %s? (y/N)", items(len(m.doomed)))
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		head,
		m.viewFavorites(),
		body,
		status,
		faintStyle.Render(m.help.View(m.keys)),
	)
	switch {
	case m.mode == modeHistory:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewHistory())
	case m.mode == modeProperties && m.props != nil:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewProperties())
	}
	return view
}

func (m *Model) viewFavorites() string {
	places := m.places()
	if len(places) == 0 {
		return ""
	}
	names := make(map[string]string, len(m.drives))
	for _, d := range m.drives {
		names[d.Path] = d.Name
	}
	parts := make([]string, 0, len(places))
	for i, p := range places {
		if i == 9 {
			break
		}
		name := filepath.Base(p)
		if n, ok := names[p]; ok && !slices.Contains(m.favorites, p) {
			name = n
		}
		label := fmt.Sprintf("%d:%s", i+1, name)
		if p == m.loc {
			label = dirStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return faintStyle.Render("★ ") + strings.Join(parts, "  ")
}

func (m *Model) viewList(width, height int) string {
	if len(m.entries) == 0 {
		return faintStyle.Render("(empty)")
	}

	// Keep the cursor in view
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}

	var sb strings.Builder
	end := min(len(m.entries), m.offset+height)
	for i := m.offset; i < end; i++ {
		line := m.viewRow(m.entries[i], width)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (m *Model) viewRow(e entry.Entry, width int) string {
	mark := "  "
	if m.selected[e.Path] {
		mark = selectedStyle.Render("● ")
	}

	name := e.DisplayName
	switch {
	case e.IsDir():
		name = dirStyle.Render(name + "/")
	case e.Extension != "":
		name = e.Stem + " " + badgeStyle.Background(termColors[e.Color]).Render(e.Extension)
	}

	var info string
	switch {
	case e.Kind == entry.TrashedItem:
		info = filepath.Dir(e.OriginalPath) + "  " + humanize.Time(e.DeletedAt)
	case e.IsDir():
		info = humanize.Time(e.ModTime)
	default:
		info = humanize.Bytes(uint64(e.Size)) + "  " + humanize.Time(e.ModTime)
	}
	info = faintStyle.Render(info)

	gap := max(1, width-lipgloss.Width(mark)-lipgloss.Width(name)-lipgloss.Width(info))
	return mark + name + strings.Repeat(" ", gap) + info
}

func (m *Model) viewPreview() string {
	e, ok := m.current()
	if !ok {
		return faintStyle.Render("nothing selected")
	}
	lines := []string{headerStyle.Render(e.DisplayName), faintStyle.Render(e.ContentType)}

	r := m.preview
	if r == nil || r.Path != e.Path {
		return strings.Join(append(lines, "", faintStyle.Render("…")), "\n")
	}

	switch r.Kind {
	case preview.Thumbnail:
		lines = append(lines, "", m.previewArt)
		if r.Playable {
			lines = append(lines, "▶ playable")
		}
	case preview.DirectoryStack:
		if !r.Stack.Open {
			lines = append(lines, "", faintStyle.Render("empty folder"))
			break
		}
		lines = append(lines, "")
		for _, s := range r.Stack.Samples {
			icon := "▪ "
			if s.IsDir {
				icon = "▸ "
			}
			col := termColors[entry.ColorFor(s.ContentType, s.Icon)]
			label := s.Icon
			if s.ThumbnailPath != "" {
				label += " (thumbnail)"
			}
			lines = append(lines, lipgloss.NewStyle().Foreground(col).Render(icon+label))
		}
		if !r.Stack.Complete {
			lines = append(lines, faintStyle.Render("…"))
		}
	default:
		lines = append(lines, "", lipgloss.NewStyle().Foreground(termColors[r.Color]).Render("◆ "+r.Icon))
		if r.Err != nil {
			lines = append(lines, faintStyle.Render(r.Err.Error()))
		}
	}

	if e.Kind == entry.TrashedItem {
		lines = append(lines, "", faintStyle.Render("from "+e.OriginalPath))
	} else if !e.IsDir() {
		lines = append(lines, "", faintStyle.Render(humanize.Comma(e.Size)+" bytes"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewHistory() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Recent operations"))
	sb.WriteString("\n\n")
	if len(m.journal) == 0 {
		sb.WriteString(faintStyle.Render("none yet"))
	}
	for _, op := range m.journal {
		kind := op.Kind
		if op.Reverts != "" {
			kind = "undo " + kind
		}
		line := fmt.Sprintf("%-12s %-14s %3d ok", humanize.Time(op.Time), kind, op.Succeeded)
		if op.Failed > 0 {
			line += fmt.Sprintf(", %d failed", op.Failed)
		}
		if len(op.Items) > 0 {
			line += faintStyle.Render("  " + filepath.Base(op.Items[0].Source))
			if len(op.Items) > 1 {
				line += faintStyle.Render(fmt.Sprintf(" +%d", len(op.Items)-1))
			}
		}
		sb.WriteString(line + "\n")
	}
	return modalStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m *Model) viewProperties() string {
	p := m.props
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(p.Entry.DisplayName))
	sb.WriteString("\n\n")

	row := func(label, value string) {
		if value != "" {
			sb.WriteString(faintStyle.Render(fmt.Sprintf("%-11s", label)) + value + "\n")
		}
	}
	row("Type", p.Entry.ContentType)
	size := humanize.IBytes(uint64(p.Size))
	if p.Entry.IsDir() {
		size = fmt.Sprintf("%s in %s", size, items(p.Items))
		if p.Items == 0 {
			size = "Empty folder"
		}
	}
	row("Size", size)
	if p.Entry.Trashed {
		row("Origin", p.Location)
		row("Deleted", p.Entry.DeletedAt.Format(time.DateTime))
	} else {
		row("Location", p.Location)
	}
	row("Link to", p.Target)
	row("Modified", p.Modified.Format(time.DateTime))
	if !p.Accessed.IsZero() {
		row("Accessed", p.Accessed.Format(time.DateTime))
	}
	if p.Owner != "" {
		row("Owner", p.Owner+":"+p.Group)
	}
	row("Mode", p.Mode.String())
	var access []string
	for _, a := range []struct {
		ok   bool
		name string
	}{{p.Readable, "read"}, {p.Writable, "write"}, {p.Executable, "execute"}} {
		if a.ok {
			access = append(access, a.name)
		}
	}
	if len(access) == 0 {
		access = append(access, "none")
	}
	row("Access", strings.Join(access, ", "))
	return modalStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
