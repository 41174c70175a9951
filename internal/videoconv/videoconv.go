// Package videoconv wraps golang.org/x/image/draw for the rescale step of
// video playback (spec component C5): decoded frames come back from the
// demux/decode backend as *image.RGBA at source resolution, and need
// rescaling to the render box plus narrowing to 24-bit RGB for PixelData.
package videoconv

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

// Algorithm selects the scaling kernel (spec §6: BoxSampling default,
// Nearest).
type Algorithm int

const (
	BoxSampling Algorithm = iota
	Nearest
)

// Converter rescales decoded video frames to a fixed destination size and
// narrows them to RGB24. Not safe for concurrent use; the video fetch
// thread owns it exclusively.
type Converter struct {
	dstW, dstH int
	dst        *image.RGBA
	algo       Algorithm
}

// New constructs a Converter targeting (w, h) with the given algorithm.
func New(w, h int, algo Algorithm) *Converter {
	return &Converter{
		dstW: w,
		dstH: h,
		dst:  image.NewRGBA(image.Rect(0, 0, w, h)),
		algo: algo,
	}
}

// ResetDstSize rebuilds the destination image if (w, h) differ from the
// current target; a no-op otherwise. Matches spec §4.4/4.5's requirement
// that resizing only rebuild the backing context when dimensions actually
// change.
func (c *Converter) ResetDstSize(w, h int) {
	if w == c.dstW && h == c.dstH {
		return
	}
	c.dstW, c.dstH = w, h
	c.dst = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Convert rescales src into the converter's destination buffer and
// narrows it to interleaved RGB24 bytes (row-major, 3 bytes/pixel, no
// padding). The returned slice is owned by the caller; it is a fresh copy
// each call.
func (c *Converter) Convert(src image.Image) ([]byte, error) {
	if src == nil {
		return nil, mediaerr.ErrInvalidArgument
	}

	var scaler xdraw.Scaler
	switch c.algo {
	case Nearest:
		scaler = xdraw.NearestNeighbor
	default:
		scaler = xdraw.BiLinear
	}

	scaler.Scale(c.dst, c.dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return rgbaToRGB24(c.dst), nil
}

func rgbaToRGB24(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)

	oi := 0
	for y := 0; y < h; y++ {
		rowStart := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[rowStart : rowStart+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			out[oi] = px[0]
			out[oi+1] = px[1]
			out[oi+2] = px[2]
			oi += 3
		}
	}
	return out
}
