// Package ansi is the concrete terminal Renderer for spec component
// C13, built on github.com/charmbracelet/lipgloss for cell styling and
// github.com/muesli/termenv for terminal capability detection. Nearest-
// color matching against a fixed list of the 16 standard ANSI colors uses
// github.com/lucasb-eyer/go-colorful's perceptual (Lab) distance, which
// tracks how a human eye judges color closeness far better than a flat
// RGB distance would for this one concern (picking the best available
// ANSI slot), distinct from the exact weighted-RGB formula internal/image
// uses for palette quantization.
package ansi

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	imgpkg "github.com/drgolem/tmediago/internal/image"
	"github.com/drgolem/tmediago/internal/render"
)

// Renderer draws render.Frame values as styled terminal cells.
type Renderer struct {
	out     *termenv.Output
	profile termenv.Profile
	cols    int
	rows    int
	mode    render.OutputMode
	ramp    []rune
}

// New builds a Renderer targeting os.Stdout. cols/rows are the usable
// terminal dimensions; mode selects Plain/BG/Color cell styling.
func New(cols, rows int, mode render.OutputMode) *Renderer {
	out := termenv.NewOutput(os.Stdout)
	return &Renderer{
		out:     out,
		profile: out.Profile,
		cols:    cols,
		rows:    rows,
		mode:    mode,
		ramp:    render.GlyphRamp,
	}
}

func (r *Renderer) Size() (cols, rows int) { return r.cols, r.rows }

// Resize updates the Renderer's usable dimensions (spec Command
// CmdResize drives this).
func (r *Renderer) Resize(cols, rows int) { r.cols, r.rows = cols, rows }

// SetMode changes the active OutputMode (spec Command
// CmdSetVideoOutputMode drives this).
func (r *Renderer) SetMode(mode render.OutputMode) { r.mode = mode }

func (r *Renderer) Close() error { return nil }

// Draw renders one frame to stdout: one styled line per pixel row,
// clipped to the Renderer's cols/rows, followed by a status line.
func (r *Renderer) Draw(f render.Frame) error {
	if f.Pixels == nil {
		return nil
	}

	var b []byte
	for row := 0; row < f.Pixels.Height && row < r.rows; row++ {
		for col := 0; col < f.Pixels.Width && col < r.cols; col++ {
			px := f.Pixels.At(row, col)
			b = append(b, []byte(r.styleCell(px))...)
		}
		b = append(b, '\n')
	}
	b = append(b, []byte(r.statusLine(f))...)

	_, err := r.out.Write(b)
	return err
}

func (r *Renderer) styleCell(px imgpkg.RGB24) string {
	glyph := string(render.GetCharFromRGB(px, r.ramp))
	switch r.mode {
	case Plain:
		return glyph
	case BG:
		style := lipgloss.NewStyle().Background(lipgloss.Color(nearestHex(px, r.profile)))
		return style.Render(" ")
	case Color:
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(nearestHex(px, r.profile)))
		return style.Render(glyph)
	default:
		return glyph
	}
}

func (r *Renderer) statusLine(f render.Frame) string {
	state := "playing"
	if f.Paused {
		state = "paused"
	}
	muted := ""
	if f.Muted {
		muted = " (muted)"
	}
	return fmt.Sprintf("[%s] %.0f/%.0fs vol=%.0f%%%s\n", state, f.ElapsedSecs, f.DurationSecs, f.Volume*100, muted)
}

// nearestHex quantizes px to the nearest entry of ansi256Palette via CIE76
// Lab distance, and returns it as "#rrggbb". profile is only consulted to
// return white for an Ascii terminal.
func nearestHex(px imgpkg.RGB24, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return "#ffffff"
	}

	target, _ := colorful.MakeColor(imageColorToStd(px))
	best := target
	bestDist := -1.0

	for _, hex := range ansi256Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		d := target.DistanceLab(c)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = c
		}
	}

	return best.Hex()
}

func imageColorToStd(px imgpkg.RGB24) stdColor {
	return stdColor{r: px.R, g: px.G, b: px.B}
}

type stdColor struct{ r, g, b uint8 }

func (c stdColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r) * 0x101
	g = uint32(c.g) * 0x101
	b = uint32(c.b) * 0x101
	a = 0xffff
	return
}

// ansi256Palette holds the 16 standard ANSI colors, used as the
// nearest-color search space; a full terminal query is out of scope for
// this shim.
var ansi256Palette = []string{
	"#000000", "#800000", "#008000", "#808000", "#000080", "#800080", "#008080", "#c0c0c0",
	"#808080", "#ff0000", "#00ff00", "#ffff00", "#0000ff", "#ff00ff", "#00ffff", "#ffffff",
}

const (
	Plain = render.Plain
	BG    = render.BG
	Color = render.Color
)
