package config

import (
	"testing"

	"github.com/drgolem/tmediago/internal/render"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.DeviceIndex)
	assert.Equal(t, uint64(262144), cfg.BufferFrames)
	assert.Equal(t, 512, cfg.FramesPerBuffer)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Shuffle)
	assert.Equal(t, "none", cfg.LoopMode)
	assert.Equal(t, 1.0, cfg.Volume)
	assert.Equal(t, render.Color, cfg.OutputMode)
	assert.Equal(t, 80, cfg.Cols)
	assert.Equal(t, 24, cfg.Rows)
}
