package render

import (
	"testing"

	imgpkg "github.com/drgolem/tmediago/internal/image"
	"pgregory.net/rapid"
)

func TestGlyphIndexBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		y := rapid.Float64Range(0, 255).Draw(t, "y")
		idx := GlyphIndex(y, len(GlyphRamp))
		if idx < 0 || idx >= len(GlyphRamp) {
			t.Fatalf("GlyphIndex(%v) = %d out of range [0, %d)", y, idx, len(GlyphRamp))
		}
	})
}

// Luminance/glyph mapping is monotonic non-decreasing in Y,
// so darker pixels never map to a denser glyph than a brighter one.
func TestGlyphIndexMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 255).Draw(t, "a")
		b := rapid.Float64Range(0, 255).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		ia := GlyphIndex(a, len(GlyphRamp))
		ib := GlyphIndex(b, len(GlyphRamp))
		if ia > ib {
			t.Fatalf("GlyphIndex not monotonic: GlyphIndex(%v)=%d > GlyphIndex(%v)=%d", a, ia, b, ib)
		}
	})
}

func TestLuminanceExtremes(t *testing.T) {
	black := Luminance(imgpkg.RGB24{R: 0, G: 0, B: 0})
	white := Luminance(imgpkg.RGB24{R: 255, G: 255, B: 255})
	if black != 0 {
		t.Fatalf("black luminance = %v, want 0", black)
	}
	if white < 254.9 || white > 255.1 {
		t.Fatalf("white luminance = %v, want ~255", white)
	}
}

// Property 9 (luminance round-trip): for a gray pixel (g,g,g),
// GetRGBFromChar(ramp, GetCharFromRGB(ramp, RGB24(g,g,g))) returns a gray
// value differing from g by at most ceil(255/(len(ramp)-1)).
func TestLuminanceRoundTrip(t *testing.T) {
	bound := (255 + len(GlyphRamp) - 1 - 1) / (len(GlyphRamp) - 1) // ceil(255/(len-1))

	rapid.Check(t, func(t *rapid.T) {
		gray := uint8(rapid.IntRange(0, 255).Draw(t, "gray"))
		c := imgpkg.RGB24{R: gray, G: gray, B: gray}

		ch := GetCharFromRGB(c, GlyphRamp)
		rgb, err := GetRGBFromChar(ch, GlyphRamp)
		if err != nil {
			t.Fatalf("GetRGBFromChar(%q) returned error: %v", ch, err)
		}

		diff := int(gray) - int(rgb.R)
		if diff < 0 {
			diff = -diff
		}
		if diff > bound {
			t.Fatalf("round-trip error %d exceeds bound %d: gray=%d char=%q reconstructed=%+v", diff, bound, gray, ch, rgb)
		}
	})
}

func TestGetRGBFromCharKnownRunes(t *testing.T) {
	for _, ch := range GlyphRamp {
		if _, err := GetRGBFromChar(ch, GlyphRamp); err != nil {
			t.Fatalf("GetRGBFromChar(%q) returned error: %v", ch, err)
		}
	}
}

func TestGetRGBFromCharUnknownRune(t *testing.T) {
	_, err := GetRGBFromChar('?', GlyphRamp)
	if err == nil {
		t.Fatalf("expected error for rune not in ramp")
	}
}
