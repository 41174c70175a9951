package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPixelDataIsBlack(t *testing.T) {
	pd := NewPixelData(3, 2)
	assert.Equal(t, 3, pd.Width)
	assert.Equal(t, 2, pd.Height)
	for _, px := range pd.Pixels {
		assert.Equal(t, RGB24{}, px)
	}
}

func TestSetAtRoundTrip(t *testing.T) {
	pd := NewPixelData(4, 4)
	c := RGB24{R: 10, G: 20, B: 30}
	pd.Set(1, 2, c)
	assert.Equal(t, c, pd.At(1, 2))
}

func TestAtOutOfRangeReturnsZero(t *testing.T) {
	pd := NewPixelData(2, 2)
	assert.Equal(t, RGB24{}, pd.At(-1, 0))
	assert.Equal(t, RGB24{}, pd.At(0, 2))
	assert.Equal(t, RGB24{}, pd.At(5, 5))
}

func TestSetOutOfRangeIsNoop(t *testing.T) {
	pd := NewPixelData(2, 2)
	pd.Set(-1, 0, RGB24{R: 1})
	pd.Set(0, 9, RGB24{R: 1})
	for _, px := range pd.Pixels {
		assert.Equal(t, RGB24{}, px)
	}
}

func TestFromRGB24Bytes(t *testing.T) {
	data := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	pd, err := FromRGB24Bytes(2, 2, data)
	assert.NoError(t, err)
	assert.Equal(t, RGB24{R: 1, G: 2, B: 3}, pd.At(0, 0))
	assert.Equal(t, RGB24{R: 4, G: 5, B: 6}, pd.At(0, 1))
	assert.Equal(t, RGB24{R: 7, G: 8, B: 9}, pd.At(1, 0))
	assert.Equal(t, RGB24{R: 10, G: 11, B: 12}, pd.At(1, 1))
}

func TestFromRGB24BytesWrongLength(t *testing.T) {
	_, err := FromRGB24Bytes(2, 2, []byte{1, 2, 3})
	assert.Error(t, err)
}
