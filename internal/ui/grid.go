package ui

import (
	"image"
	"path/filepath"
	"strings"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/preview"
)

// GridEvent reports what happened during one Grid frame.
type GridEvent struct {
	Open    int // Index double-clicked, -1 if none
	First   int // First visible entry index
	Visible int // Number of visible entries
}

// Grid lays out entries as a scrollable grid of tiles.
type Grid struct {
	Theme    *material.Theme
	TileSize int // Thumbnail edge in pixels
	Selected int

	list   layout.List
	clicks []widget.Clickable
	cols   int
}

func NewGrid(th *material.Theme, tileSize int) *Grid {
	return &Grid{
		Theme:    th,
		TileSize: tileSize,
		Selected: -1,
		list:     layout.List{Axis: layout.Vertical},
	}
}

// SlotFor names the preview slot of an entry.
func SlotFor(e entry.Entry) preview.Slot {
	return preview.Slot(e.Path)
}

// Reset scrolls back to the top, e.g. after navigating.
func (g *Grid) Reset() {
	g.list.Position = layout.Position{}
	g.Selected = -1
}

func (g *Grid) Layout(gtx layout.Context, entries []entry.Entry, tc *ThumbnailCache) GridEvent {
	ev := GridEvent{Open: -1}
	if len(g.clicks) < len(entries) {
		g.clicks = append(g.clicks, make([]widget.Clickable, len(entries)-len(g.clicks))...)
	}

	for i := range entries {
		for {
			c, ok := g.clicks[i].Update(gtx)
			if !ok {
				break
			}
			g.Selected = i
			if c.NumClicks >= 2 {
				ev.Open = i
			}
		}
	}

	cellW := g.TileSize + gtx.Dp(16)
	g.cols = max(1, gtx.Constraints.Max.X/cellW)
	rows := (len(entries) + g.cols - 1) / g.cols

	layout.Inset{Top: unit.Dp(8), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return g.list.Layout(gtx, rows, func(gtx layout.Context, row int) layout.Dimensions {
			var children []layout.FlexChild
			for i := row * g.cols; i < min(len(entries), (row+1)*g.cols); i++ {
				children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return g.layoutCell(gtx, i, entries[i], tc, cellW)
				}))
			}
			return layout.Flex{}.Layout(gtx, children...)
		})
	})

	ev.First = g.list.Position.First * g.cols
	ev.Visible = min(len(entries)-ev.First, g.list.Position.Count*g.cols)
	return ev
}

func (g *Grid) layoutCell(gtx layout.Context, idx int, e entry.Entry, tc *ThumbnailCache, cellW int) layout.Dimensions {
	return g.clicks[idx].Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints = layout.Exact(image.Pt(cellW, g.TileSize+gtx.Dp(40)))
		if idx == g.Selected {
			paint.FillShape(gtx.Ops, lighten(colAccent, 150), clip.Rect{Max: gtx.Constraints.Max}.Op())
		}
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				p, ok := tc.Get(SlotFor(e))
				return Tile{Size: g.TileSize}.Layout(gtx, e, p, ok)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(g.Theme, truncateName(e.DisplayName, 18))
				lbl.MaxLines = 1
				lbl.Alignment = text.Middle
				if e.Kind == entry.TrashedItem {
					lbl.Color = colLightGray
				}
				return lbl.Layout(gtx)
			}),
		)
	})
}

// truncateName shortens a name to maxLen runes, keeping its extension.
func truncateName(name string, maxLen int) string {
	if len([]rune(name)) <= maxLen {
		return name
	}
	ext := filepath.Ext(name)
	base := []rune(strings.TrimSuffix(name, ext))
	keep := max(1, maxLen-3-len([]rune(ext)))
	if len(base) > keep {
		base = base[:keep]
	}
	return string(base) + "..." + ext
}
