package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGetScaleSizeFitsWithinBox(t *testing.T) {
	w, h := GetScaleSize(1920, 1080, 80, 24)
	assert.LessOrEqual(t, w, 80)
	assert.LessOrEqual(t, h, 24)
}

func TestGetScaleSizeFitsWithinBoxProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sw := rapid.IntRange(1, 4000).Draw(rt, "sw")
		sh := rapid.IntRange(1, 4000).Draw(rt, "sh")
		tw := rapid.IntRange(1, 400).Draw(rt, "tw")
		th := rapid.IntRange(1, 400).Draw(rt, "th")

		w, h := GetScaleSize(sw, sh, tw, th)

		// the scaled box must fit within the target box (allowing rounding slack)
		if w > tw+1 || h > th+1 {
			rt.Fatalf("scaled %dx%d exceeds target %dx%d", w, h, tw, th)
		}
	})
}

func TestBoundDimsNeverUpscales(t *testing.T) {
	w, h := BoundDims(10, 10, 80, 24)
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)
}

func TestBoundDimsShrinksOversized(t *testing.T) {
	w, h := BoundDims(1920, 1080, 80, 24)
	assert.LessOrEqual(t, w, 80)
	assert.LessOrEqual(t, h, 24)
}
