package decode

import (
	"errors"
	"testing"
	"time"

	"github.com/erparts/reisen"
	"github.com/stretchr/testify/assert"
)

// Invariant 8 (seek consistency): after a seek to target, the next frame
// observed on each stream has pts >= target. discardUntil is the loop that
// enforces this inside JumpToTime; tested here directly against a fake
// nextFrames closure since MediaDecoder otherwise requires a real
// *reisen.Media demux pipeline.

func TestDiscardUntilStopsOnFirstFrameMeetingTarget(t *testing.T) {
	batches := [][]Frame{
		{{PTS: 1 * time.Second}, {PTS: 2 * time.Second}},
		{{PTS: 3 * time.Second}, {PTS: 5 * time.Second}},
	}
	call := 0
	next := func() ([]Frame, error) {
		if call >= len(batches) {
			return nil, nil
		}
		b := batches[call]
		call++
		return b, nil
	}

	err := discardUntil(4*time.Second, next)

	assert.NoError(t, err)
	assert.Equal(t, 2, call, "should stop at the batch whose last frame reaches target")
}

func TestDiscardUntilChecksOnlyLastFrameOfBatch(t *testing.T) {
	// A batch whose last frame is still below target must keep discarding,
	// even if it contains a frame >= target (decode batches are forward-
	// only: only the final frame in a pulled batch tells us "we reached
	// target yet").
	batches := [][]Frame{
		{{PTS: 10 * time.Second}, {PTS: 1 * time.Second}}, // last frame undershoots
		{{PTS: 6 * time.Second}},
	}
	call := 0
	next := func() ([]Frame, error) {
		if call >= len(batches) {
			return nil, nil
		}
		b := batches[call]
		call++
		return b, nil
	}

	err := discardUntil(5*time.Second, next)

	assert.NoError(t, err)
	assert.Equal(t, 2, call)
}

func TestDiscardUntilStopsOnEOF(t *testing.T) {
	calls := 0
	next := func() ([]Frame, error) {
		calls++
		return nil, nil // immediate EOF
	}

	err := discardUntil(10*time.Second, next)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDiscardUntilPropagatesError(t *testing.T) {
	wantErr := errors.New("demux failure")
	next := func() ([]Frame, error) {
		return nil, wantErr
	}

	err := discardUntil(1*time.Second, next)

	assert.ErrorIs(t, err, wantErr)
}

func TestDiscardUntilTargetZeroStopsImmediately(t *testing.T) {
	calls := 0
	next := func() ([]Frame, error) {
		calls++
		return []Frame{{PTS: 0}}, nil
	}

	err := discardUntil(0, next)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecoderForRoutesByKind(t *testing.T) {
	video := &StreamDecoder{kind: reisen.StreamVideo}
	audio := &StreamDecoder{kind: reisen.StreamAudio}
	d := &MediaDecoder{video: video, audio: audio}

	assert.Same(t, video, d.decoderFor(reisen.StreamVideo))
	assert.Same(t, audio, d.decoderFor(reisen.StreamAudio))
}
