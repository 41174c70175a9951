// Package config holds the player's runtime configuration, populated by
// cobra flag bindings.
package config

import "github.com/drgolem/tmediago/internal/render"

// Config is the full set of flags a tmediago invocation accepts.
type Config struct {
	DeviceIndex     int
	BufferFrames    uint64
	FramesPerBuffer int
	Verbose         bool
	Shuffle         bool
	LoopMode        string
	Volume          float64
	OutputMode      render.OutputMode
	Cols            int
	Rows            int
}

// Default returns the flag defaults.
func Default() Config {
	return Config{
		DeviceIndex:     1,
		BufferFrames:    262144,
		FramesPerBuffer: 512,
		Verbose:         false,
		Shuffle:         false,
		LoopMode:        "none",
		Volume:          1.0,
		OutputMode:      render.Color,
		Cols:            80,
		Rows:            24,
	}
}
