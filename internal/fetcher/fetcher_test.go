package fetcher

import (
	"context"
	"sync"
	"testing"

	"github.com/drgolem/tmediago/internal/clock"
)

// newTestFetcher builds a MediaFetcher with only the fields the
// decoder-independent coordination methods (Seek/Pause/Resume/
// dispatchExit/ConsumeFrame) touch, so they can be exercised without a
// real media file.
func newTestFetcher() *MediaFetcher {
	f := &MediaFetcher{
		clock:   clock.New(),
		nowFunc: defaultNow,
	}
	f.resumeCond = sync.NewCond(&f.mu)
	f.exitCond = sync.NewCond(&f.mu)
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.clock.Init(0)
	f.inUse.Store(true)
	return f
}

func TestSeekBumpsBothEpochsAndSkipsClock(t *testing.T) {
	f := newTestFetcher()

	before := f.clock.GetTime(10)
	if before != 10 {
		t.Fatalf("baseline clock time = %v, want 10", before)
	}

	f.Seek(20_000_000_000 /* 20s in ns */, 10)

	after := f.clock.GetTime(10)
	if after != 20 {
		t.Fatalf("clock time after seek = %v, want 20", after)
	}
	if f.msgVideoSeekEpoch.Load() != 1 || f.msgAudioSeekEpoch.Load() != 1 {
		t.Fatalf("expected both seek epochs bumped to 1, got video=%d audio=%d",
			f.msgVideoSeekEpoch.Load(), f.msgAudioSeekEpoch.Load())
	}

	f.Seek(5_000_000_000, 10)
	if f.msgVideoSeekEpoch.Load() != 2 || f.msgAudioSeekEpoch.Load() != 2 {
		t.Fatal("second seek should bump epochs again, squashing the first")
	}
}

func TestPauseResumeTogglesClock(t *testing.T) {
	f := newTestFetcher()
	if !f.IsPlaying() {
		t.Fatal("expected playing after Init")
	}
	f.Pause(10)
	if f.IsPlaying() {
		t.Fatal("expected paused")
	}
	f.Resume(10)
	if !f.IsPlaying() {
		t.Fatal("expected playing after resume")
	}
}

func TestDispatchExitIsIdempotentAndSticksFirstError(t *testing.T) {
	f := newTestFetcher()

	f.dispatchExit(nil)
	if f.inUse.Load() {
		t.Fatal("expected inUse=false after dispatchExit")
	}

	sentinel := errSentinel{}
	f.dispatchExit(sentinel)
	if f.Err() != nil {
		t.Fatal("second dispatchExit must not overwrite a nil-then-later error, and first call already carried nil")
	}

	select {
	case <-f.ctx.Done():
	default:
		t.Fatal("expected context cancelled after dispatchExit")
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "sentinel" }

func TestConsumeFrameClearsChangedFlag(t *testing.T) {
	f := newTestFetcher()
	if _, changed := f.ConsumeFrame(); changed {
		t.Fatal("expected no frame change before any publish")
	}

	f.frameChanged.Store(true)
	_, changed := f.ConsumeFrame()
	if !changed {
		t.Fatal("expected changed=true on first consume after publish")
	}
	_, changed = f.ConsumeFrame()
	if changed {
		t.Fatal("expected changed=false on second consume")
	}
}

func TestPcmBytesToFloat32RoundTrip(t *testing.T) {
	// 16-bit LE: 0x0000 -> 0.0, 0x7FFF (~max) -> ~1.0, 0x8000 (min) -> -1.0
	data := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80}
	out := pcmBytesToFloat32(data)
	if len(out) != 3 {
		t.Fatalf("got %d samples, want 3", len(out))
	}
	if out[0] != 0 {
		t.Fatalf("sample 0 = %v, want 0", out[0])
	}
	if out[1] < 0.99 || out[1] > 1.0 {
		t.Fatalf("sample 1 = %v, want ~1.0", out[1])
	}
	if out[2] != -1.0 {
		t.Fatalf("sample 2 = %v, want -1.0", out[2])
	}
}

func TestRenderVisualizerFrameDimensions(t *testing.T) {
	samples := make([]float32, 64*2)
	pd := renderVisualizerFrame(samples, 2, 20, 10)
	if pd.Width != 20 || pd.Height != 10 {
		t.Fatalf("got %dx%d, want 20x10", pd.Width, pd.Height)
	}
}

func TestRenderVisualizerFrameEmptySamples(t *testing.T) {
	pd := renderVisualizerFrame(nil, 2, 20, 10)
	if pd.Width != 20 || pd.Height != 10 {
		t.Fatalf("got %dx%d, want 20x10", pd.Width, pd.Height)
	}
}
