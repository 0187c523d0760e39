package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/preview"
)

// previewSlot is the single slot behind the preview pane.
const previewSlot preview.Slot = "pane"

type previewMsg struct {
	slot   preview.Slot
	result preview.Result
}

// previewSink is a preview.Sink that forwards accepted results to the
// Bubble Tea loop. Results for tokens other than the slot's latest are
// dropped here, before they reach the model.
type previewSink struct {
	mu     sync.Mutex
	expect map[preview.Slot]preview.Token
	ch     chan previewMsg
	done   chan struct{}
	once   sync.Once
}

func newPreviewSink() *previewSink {
	return &previewSink{
		expect: make(map[preview.Slot]preview.Token),
		ch:     make(chan previewMsg, 8),
		done:   make(chan struct{}),
	}
}

func (s *previewSink) Expect(slot preview.Slot, token preview.Token) {
	s.mu.Lock()
	s.expect[slot] = token
	s.mu.Unlock()
}

func (s *previewSink) Deliver(slot preview.Slot, r preview.Result) {
	s.mu.Lock()
	want := s.expect[slot]
	s.mu.Unlock()
	if want != r.Token {
		debug.Log(debug.UI, "tui: %s dropped token %d (want %d)", slot, r.Token, want)
		return
	}
	select {
	case s.ch <- previewMsg{slot: slot, result: r}:
	case <-s.done:
	}
}

// wait delivers the next accepted result.
func (s *previewSink) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.ch:
			return msg
		case <-s.done:
			return nil
		}
	}
}

func (s *previewSink) close() {
	s.once.Do(func() { close(s.done) })
}

// renderImage draws img into w×h terminal cells using upper half blocks,
// two pixel rows per cell.
func renderImage(img image.Image, w, h int) string {
	if img == nil || w <= 0 || h <= 0 {
		return ""
	}
	b := img.Bounds()
	// Keep the aspect ratio; a cell is about twice as tall as it is wide
	pw, ph := w, h*2
	if b.Dx()*ph > b.Dy()*pw {
		ph = max(2, b.Dy()*pw/max(1, b.Dx()))
	} else {
		pw = max(1, b.Dx()*ph/max(1, b.Dy()))
	}
	ph += ph % 2

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < ph; y += 2 {
		for x := 0; x < pw; x++ {
			top := lipgloss.Color(hexColor(dst.RGBAAt(x, y)))
			bottom := lipgloss.Color(hexColor(dst.RGBAAt(x, y+1)))
			sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		if y+2 < ph {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
