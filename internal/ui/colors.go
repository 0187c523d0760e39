package ui

import (
	"image/color"

	"github.com/justyntemme/razorcore/internal/entry"
)

var (
	colWhite     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colLightGray = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colDirBlue   = color.NRGBA{R: 0, G: 0, B: 128, A: 255}
	colAccent    = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	colShadow    = color.NRGBA{R: 0, G: 0, B: 0, A: 60}
	colPlay      = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
)

// palette maps fallback color categories to paint colors.
var palette = map[entry.Color]color.NRGBA{
	entry.ColorGray:   {R: 100, G: 100, B: 100, A: 255},
	entry.ColorBlue:   {R: 66, G: 133, B: 244, A: 255},
	entry.ColorTeal:   {R: 0, G: 150, B: 136, A: 255},
	entry.ColorGreen:  {R: 76, G: 175, B: 80, A: 255},
	entry.ColorYellow: {R: 247, G: 223, B: 30, A: 255},
	entry.ColorOrange: {R: 228, G: 77, B: 38, A: 255},
	entry.ColorRed:    {R: 244, G: 67, B: 54, A: 255},
	entry.ColorPink:   {R: 233, G: 30, B: 99, A: 255},
	entry.ColorPurple: {R: 130, G: 80, B: 160, A: 255},
	entry.ColorSlate:  {R: 96, G: 125, B: 139, A: 255},
}

// PaletteColor returns the paint color for a color category.
func PaletteColor(c entry.Color) color.NRGBA {
	if col, ok := palette[c]; ok {
		return col
	}
	return palette[entry.ColorGray]
}

// lighten mixes c toward white.
func lighten(c color.NRGBA, amount int) color.NRGBA {
	return color.NRGBA{
		R: uint8(min(255, int(c.R)+amount)),
		G: uint8(min(255, int(c.G)+amount)),
		B: uint8(min(255, int(c.B)+amount)),
		A: c.A,
	}
}
