// Package render defines the terminal-rendering and input-handling
// surface of spec component C13: the Renderer/InputHandler interfaces,
// the closed Command set, video output modes, and the luminance/glyph
// formulas a concrete renderer uses to turn a PixelData frame into
// terminal output.
package render

import (
	imgpkg "github.com/drgolem/tmediago/internal/image"
	"github.com/drgolem/tmediago/internal/mediaerr"
)

// OutputMode selects how a terminal cell is colored for a source pixel.
type OutputMode int

const (
	// Plain renders a fixed-intensity glyph ramp with no color.
	Plain OutputMode = iota
	// BG paints the pixel color onto the cell background, leaving the
	// foreground glyph fixed.
	BG
	// Color paints the pixel color onto the foreground glyph, chosen by
	// luminance from the glyph ramp.
	Color
)

// Command is the closed set of user-facing playback actions a
// concrete InputHandler translates raw input into.
type Command int

const (
	CmdSkip Command = iota
	CmdRewind
	CmdToggleShuffle
	CmdSetLoopType
	CmdSeek
	CmdSeekOffset
	CmdPlay
	CmdPause
	CmdTogglePlayback
	CmdSetVideoOutputMode
	CmdResize
	CmdRefresh
	CmdToggleFullscreen
	CmdSetVolume
	CmdVolumeOffset
	CmdMute
)

// Event pairs a Command with whatever payload it carries (a loop mode,
// a seek target, a volume delta, a new terminal size, ...). Concrete
// payload type depends on Command; a renderer-specific InputHandler
// knows which field to read.
type Event struct {
	Cmd       Command
	IntArg    int
	FloatArg  float64
	BoolArg   bool
	StringArg string
}

// GlyphRamp is the default ramp used by Plain/Color modes, ordered from
// least to most visually dense.
var GlyphRamp = []rune(" .:-=+*#%@")

// Luminance computes perceptual luma from an RGB24 using the standard
// Rec. 601 weights.
func Luminance(c imgpkg.RGB24) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// GlyphIndex maps a luminance value in [0, 255] onto an index into a
// ramp of length rampLen.
func GlyphIndex(y float64, rampLen int) int {
	if rampLen <= 1 {
		return 0
	}
	idx := int(y * float64(rampLen-1) / 255.0)
	if idx < 0 {
		idx = 0
	}
	if idx >= rampLen {
		idx = rampLen - 1
	}
	return idx
}

// GetCharFromRGB resolves a pixel color to a rune in ramp via
// Luminance+GlyphIndex.
func GetCharFromRGB(c imgpkg.RGB24, ramp []rune) rune {
	return ramp[GlyphIndex(Luminance(c), len(ramp))]
}

// GetRGBFromChar is GetCharFromRGB's inverse: given a rune previously drawn
// from ramp, it reconstructs the grayscale RGB24 whose GlyphIndex bucket
// produced that rune. Returns ErrInvalidArgument if ch is not in ramp.
func GetRGBFromChar(ch rune, ramp []rune) (imgpkg.RGB24, error) {
	for i, r := range ramp {
		if r == ch {
			var gray uint8
			if len(ramp) > 1 {
				gray = uint8(i * 255 / (len(ramp) - 1))
			}
			return imgpkg.RGB24{R: gray, G: gray, B: gray}, nil
		}
	}
	return imgpkg.RGB24{}, mediaerr.ErrInvalidArgument
}

// Frame is what a Renderer draws: a rendered PixelData frame plus the
// overlay state a status line needs.
type Frame struct {
	Pixels      *imgpkg.PixelData
	ElapsedSecs float64
	DurationSecs float64
	Paused      bool
	Muted       bool
	Volume      float64
}

// Renderer draws frames to a terminal and reports its usable size.
type Renderer interface {
	Size() (cols, rows int)
	Draw(f Frame) error
	Close() error
}

// InputHandler translates raw terminal input into Events. Poll returns
// ok=false when no event is currently available (non-blocking).
type InputHandler interface {
	Poll() (ev Event, ok bool)
	Close() error
}
