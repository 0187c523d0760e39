package ui

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"

	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/preview"
)

// Tile paints one slot: its thumbnail, a stacked directory preview or the
// fallback icon of the entry it stands for.
type Tile struct {
	Size int // Edge length in pixels
}

// Layout draws p if the slot has content, otherwise a placeholder icon
// for e.
func (t Tile) Layout(gtx layout.Context, e entry.Entry, p Preview, ok bool) layout.Dimensions {
	size := image.Pt(t.Size, t.Size)
	gtx.Constraints = layout.Exact(size)

	switch {
	case ok && p.HasImage:
		widget.Image{Src: p.Image, Fit: widget.Contain, Position: layout.Center}.Layout(gtx)
		if p.Result.Playable {
			drawPlayBadge(gtx.Ops, t.Size)
		}
	case ok && p.Result.Kind == preview.DirectoryStack:
		drawStack(gtx.Ops, t.Size, p.Result.Stack)
	case ok:
		drawFileIcon(gtx.Ops, t.Size, PaletteColor(p.Result.Color))
	case e.IsDir():
		drawFolderIcon(gtx.Ops, t.Size, colAccent, colDirBlue)
	default:
		drawFileIcon(gtx.Ops, t.Size, PaletteColor(e.Color))
	}
	return layout.Dimensions{Size: size}
}

// drawStack draws a folder with up to three sample cards peeking out of it.
// An empty (closed) folder is drawn flat.
func drawStack(ops *op.Ops, size int, st preview.Stack) {
	s := float32(size)
	if st.Open {
		cardW, cardH := int(s*0.40), int(s*0.46)
		for i, sample := range st.Samples {
			x := int(s*0.16) + i*int(s*0.14)
			y := int(s*0.10) + i*int(s*0.04)
			col := PaletteColor(entry.ColorFor(sample.ContentType, sample.Icon))
			if sample.IsDir {
				col = colAccent
			}
			fillRect(ops, colShadow, x+2, y+2, cardW, cardH)
			fillRect(ops, colWhite, x, y, cardW, cardH)
			fillRect(ops, lighten(col, 60), x+2, y+2, cardW-4, cardH/2)
		}
	}
	drawFolderIcon(ops, size, colAccent, colDirBlue)
}

func drawFolderIcon(ops *op.Ops, size int, innerColor, outerColor color.NRGBA) {
	s := float32(size)

	bodyY := int(s * 0.28)
	bodyH := int(s * 0.58)
	bodyW := int(s * 0.76)
	bodyX := int(s * 0.12)

	fillRect(ops, lighten(innerColor, 180), bodyX, bodyY, bodyW, bodyH)
	strokeRect(ops, outerColor, bodyX, bodyY, bodyW, bodyH, 2)

	// The manila tab
	tabW := int(s * 0.30)
	tabH := int(s * 0.12)
	fillRect(ops, outerColor, bodyX, bodyY-tabH, tabW, tabH+2)
}

func drawFileIcon(ops *op.Ops, size int, accent color.NRGBA) {
	s := float32(size)

	fileX := int(s * 0.22)
	fileY := int(s * 0.08)
	fileW := int(s * 0.56)
	fileH := int(s * 0.78)

	fillRect(ops, lighten(accent, 150), fileX, fileY, fileW, fileH)
	strokeRect(ops, accent, fileX, fileY, fileW, fileH, 2)

	// Folded corner
	corner := int(s * 0.12)
	fillRect(ops, accent, fileX+fileW-corner, fileY, corner, corner)
}

func drawPlayBadge(ops *op.Ops, size int) {
	s := float32(size)
	cx, cy, r := s/2, s/2, s*0.16

	var p clip.Path
	p.Begin(ops)
	p.MoveTo(f32.Pt(cx-r*0.6, cy-r))
	p.LineTo(f32.Pt(cx+r, cy))
	p.LineTo(f32.Pt(cx-r*0.6, cy+r))
	p.Close()
	paint.FillShape(ops, colPlay, clip.Outline{Path: p.End()}.Op())
}

func fillRect(ops *op.Ops, c color.NRGBA, x, y, w, h int) {
	paint.FillShape(ops, c, clip.Rect{Min: image.Pt(x, y), Max: image.Pt(x+w, y+h)}.Op())
}

func strokeRect(ops *op.Ops, c color.NRGBA, x, y, w, h, bw int) {
	fillRect(ops, c, x, y, w, bw)      // top
	fillRect(ops, c, x, y+h-bw, w, bw) // bottom
	fillRect(ops, c, x, y, bw, h)      // left
	fillRect(ops, c, x+w-bw, y, bw, h) // right
}
