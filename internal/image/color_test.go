package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindClosestColorIndexEmptyPalette(t *testing.T) {
	_, err := FindClosestColorIndex(RGB24{}, nil)
	assert.Error(t, err)
}

func TestFindClosestColorIndexExactMatch(t *testing.T) {
	palette := []RGB24{{R: 255}, {G: 255}, {B: 255}}
	idx, err := FindClosestColorIndex(RGB24{G: 255}, palette)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestFindClosestColorIndexNearest(t *testing.T) {
	palette := []RGB24{{R: 0, G: 0, B: 0}, {R: 250, G: 250, B: 250}}
	idx, err := FindClosestColorIndex(RGB24{R: 200, G: 200, B: 200}, palette)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDistanceSquaredZeroForIdenticalColors(t *testing.T) {
	c := RGB24{R: 10, G: 20, B: 30}
	assert.Equal(t, int64(0), distanceSquared(c, c))
}
