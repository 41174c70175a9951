package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHorzLineDrawsInclusiveRange(t *testing.T) {
	c := NewCanvas(5, 3)
	red := RGB24{R: 255}
	c.HorzLine(1, 1, 3, red)

	img := c.GetImage()
	assert.Equal(t, RGB24{}, img.At(1, 0))
	assert.Equal(t, red, img.At(1, 1))
	assert.Equal(t, red, img.At(1, 2))
	assert.Equal(t, red, img.At(1, 3))
	assert.Equal(t, RGB24{}, img.At(1, 4))
}

func TestHorzLineHandlesReversedOrder(t *testing.T) {
	c := NewCanvas(5, 3)
	blue := RGB24{B: 255}
	c.HorzLine(0, 3, 1, blue)

	img := c.GetImage()
	assert.Equal(t, blue, img.At(0, 1))
	assert.Equal(t, blue, img.At(0, 2))
	assert.Equal(t, blue, img.At(0, 3))
}

func TestVertLineDrawsInclusiveRange(t *testing.T) {
	c := NewCanvas(3, 5)
	green := RGB24{G: 255}
	c.VertLine(1, 1, 3, green)

	img := c.GetImage()
	assert.Equal(t, RGB24{}, img.At(0, 1))
	assert.Equal(t, green, img.At(1, 1))
	assert.Equal(t, green, img.At(2, 1))
	assert.Equal(t, green, img.At(3, 1))
	assert.Equal(t, RGB24{}, img.At(4, 1))
}

func TestLineEndpointsAreSet(t *testing.T) {
	c := NewCanvas(10, 10)
	white := RGB24{R: 255, G: 255, B: 255}
	c.Line(0, 0, 5, 5, white)

	img := c.GetImage()
	assert.Equal(t, white, img.At(0, 0))
	assert.Equal(t, white, img.At(5, 5))
}

func TestLineDegenerateSinglePoint(t *testing.T) {
	c := NewCanvas(5, 5)
	white := RGB24{R: 255, G: 255, B: 255}
	c.Line(2, 2, 2, 2, white)

	assert.Equal(t, white, c.GetImage().At(2, 2))
}

func TestAbsAndSign(t *testing.T) {
	assert.Equal(t, 5, abs(-5))
	assert.Equal(t, 5, abs(5))
	assert.Equal(t, 0, abs(0))

	assert.Equal(t, 1, sign(3))
	assert.Equal(t, -1, sign(-3))
	assert.Equal(t, 0, sign(0))
}
