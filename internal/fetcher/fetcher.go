// Package fetcher implements MediaFetcher (spec component C9), the
// multi-goroutine coordinator that owns the decoder, the media clock, and
// the audio ring buffer: it seeks, pauses, resumes, and shuts down
// atomically, publishing decoded video frames (or an audio visualizer)
// for a renderer to pick up.
package fetcher

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erparts/reisen"

	"github.com/drgolem/tmediago/internal/audiodevice"
	"github.com/drgolem/tmediago/internal/clock"
	"github.com/drgolem/tmediago/internal/decode"
	imgpkg "github.com/drgolem/tmediago/internal/image"
	"github.com/drgolem/tmediago/internal/mediaerr"
	"github.com/drgolem/tmediago/internal/probe"
	"github.com/drgolem/tmediago/internal/resample"
	"github.com/drgolem/tmediago/internal/ring"
	"github.com/drgolem/tmediago/internal/videoconv"
)

const (
	videoPaceSleep    = 5 * time.Millisecond
	resumeWaitTimeout = 25 * time.Millisecond
	audioWriteTimeout = 25 * time.Millisecond
	watchdogInterval  = 100 * time.Millisecond
	desyncThreshold   = 150 * time.Millisecond
	visualizerPeriod  = 50 * time.Millisecond
)

// Config is the fixed setup a playback session is built from.
type Config struct {
	AudioDeviceIndex  int
	FramesPerBuffer   int
	RingCapacityFrames uint64
	ScaleWidth        int
	ScaleHeight       int
	Algorithm         videoconv.Algorithm
	// NowFunc supplies monotonic seconds; overridable for tests. Defaults
	// to wall-clock seconds.
	NowFunc func() float64
}

func defaultNow() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// MediaFetcher is the playback coordinator. See spec §4.9/§5 for the full
// thread/protocol description this type implements.
type MediaFetcher struct {
	cfg     Config
	nowFunc func() float64

	decoder    *decode.MediaDecoder
	clock      *clock.MediaClock
	kind       probe.MediaKind
	videoConv  *videoconv.Converter
	resampler  *resample.Resampler
	audioRing  *ring.Blocking
	audioSrc   *decode.AudioSource
	device     *audiodevice.Device

	// alter_mutex: guards clock mutation ordering relative to the
	// resume/exit condition variables. Never nested with audioRing's
	// internal mutex.
	mu         sync.Mutex
	resumeCond *sync.Cond
	exitCond   *sync.Cond

	inUse atomic.Bool

	msgVideoSeekEpoch atomic.Uint64
	msgAudioSeekEpoch atomic.Uint64
	seekTargetNanos   atomic.Int64

	frameMu      sync.Mutex
	frame        *imgpkg.PixelData
	frameChanged atomic.Bool

	errMu sync.Mutex
	err   error

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// New opens path and wires up the playback session's components: the
// decoder, clock, optional audio ring/device/resampler, and the video
// converter, choosing the MediaKind with probe.Classify from the opened
// decoder's streams and duration. The file-extension lookup that
// probe.Probe applies first is not used here.
func New(path string, cfg Config) (*MediaFetcher, error) {
	d, err := decode.Open(path)
	if err != nil {
		return nil, err
	}

	kind := probe.Classify(d.HasVideo(), d.HasAudio(), d.Duration().Seconds())

	f := &MediaFetcher{
		cfg:       cfg,
		nowFunc:   cfg.NowFunc,
		decoder:   d,
		clock:     clock.New(),
		kind:      kind,
		videoConv: videoconv.New(cfg.ScaleWidth, cfg.ScaleHeight, cfg.Algorithm),
	}
	if f.nowFunc == nil {
		f.nowFunc = defaultNow
	}
	f.resumeCond = sync.NewCond(&f.mu)
	f.exitCond = sync.NewCond(&f.mu)
	f.ctx, f.cancel = context.WithCancel(context.Background())

	if d.HasAudio() {
		af := d.AudioFormat()
		f.resampler = resample.New(af.SampleRate, af.SampleRate, af.Channels)
		f.audioRing = ring.NewBlocking(ring.New(cfg.RingCapacityFrames, af.Channels, af.SampleRate, 0))
		f.audioSrc = decode.NewAudioSource(d)
		f.device = audiodevice.New(audiodevice.Config{
			DeviceIndex:      cfg.AudioDeviceIndex,
			SampleRate:       af.SampleRate,
			Channels:         af.Channels,
			FramesPerBuffer:  cfg.FramesPerBuffer,
			InnerQueueFrames: cfg.RingCapacityFrames,
		}, f.onAudioData)
	}

	return f, nil
}

// Kind reports the detected MediaKind.
func (f *MediaFetcher) Kind() probe.MediaKind { return f.kind }

// Duration is the underlying media's total duration.
func (f *MediaFetcher) Duration() time.Duration { return f.decoder.Duration() }

// onAudioData is the audiodevice.OnDataFunc bridging the
// BlockingAudioRingBuffer into the device's inner wait-free queue.
func (f *MediaFetcher) onAudioData(dst []float32) int {
	channels := f.audioRing.Channels()
	want := uint64(len(dst) / channels)

	avail := f.audioRing.ReadableFrames()
	if avail == 0 {
		return 0
	}
	if avail > want {
		avail = want
	}

	f.audioRing.ReadInto(avail, dst[:avail*uint64(channels)])
	return int(avail)
}

// Begin starts every worker goroutine for this session, initializing the
// clock at now.
func (f *MediaFetcher) Begin(now float64) error {
	f.clock.Init(now)
	f.inUse.Store(true)

	if f.device != nil {
		if err := f.device.Start(); err != nil {
			f.inUse.Store(false)
			return mediaerr.NewExternalLibError(0, "start audio device", err)
		}
	}

	f.wg.Add(1)
	go f.videoFetchLoop()

	if f.decoder.HasAudio() {
		f.wg.Add(1)
		go f.audioDispatchLoop()
	}

	f.wg.Add(1)
	go f.durationWatchdogLoop()

	return nil
}

// Join blocks until every worker has exited and returns the first
// reported error, if any.
func (f *MediaFetcher) Join() error {
	f.wg.Wait()
	return f.Err()
}

// Err returns the first error reported by any worker, if any.
func (f *MediaFetcher) Err() error {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	return f.err
}

// Seek implements spec §4.9's seek protocol: skip the clock, then bump
// both seek epochs so worker threads discard in-flight frames on their
// next iteration and re-sync to target. A second seek issued before the
// first is serviced simply overwrites seekTargetNanos and re-bumps the
// epoch, squashing the stale request.
func (f *MediaFetcher) Seek(target time.Duration, now float64) {
	f.mu.Lock()
	delta := target.Seconds() - f.clock.GetTime(now)
	f.clock.Skip(delta)
	f.seekTargetNanos.Store(int64(target))
	f.msgVideoSeekEpoch.Add(1)
	f.msgAudioSeekEpoch.Add(1)
	f.mu.Unlock()
}

// Pause freezes the clock; workers observe this via clock.IsPlaying.
func (f *MediaFetcher) Pause(now float64) {
	f.clock.Pause(now)
}

// Resume unfreezes the clock and wakes any worker waiting on resumeCond.
func (f *MediaFetcher) Resume(now float64) {
	f.clock.Resume(now)
	f.mu.Lock()
	f.resumeCond.Broadcast()
	f.mu.Unlock()
}

// IsPlaying reports the clock's play/pause state.
func (f *MediaFetcher) IsPlaying() bool { return f.clock.IsPlaying() }

// CurrentTime is the media clock's current position.
func (f *MediaFetcher) CurrentTime() time.Duration {
	return time.Duration(f.clock.GetTime(f.nowFunc()) * float64(time.Second))
}

// Shutdown requests every worker thread exit, for use by an external
// cancellation source (e.g. a SIGINT handler) rather than a worker error.
func (f *MediaFetcher) Shutdown() {
	f.dispatchExit(nil)
}

// ConsumeFrame returns the latest published frame and whether it is new
// since the last call (spec's frame_changed flag), clearing the flag.
func (f *MediaFetcher) ConsumeFrame() (*imgpkg.PixelData, bool) {
	f.frameMu.Lock()
	fr := f.frame
	f.frameMu.Unlock()
	changed := f.frameChanged.CompareAndSwap(true, false)
	return fr, changed
}

// GetVolume / SetVolume / IsMuted / SetMuted pass straight through to the
// audio device, a no-op if there is none.
func (f *MediaFetcher) GetVolume() float64 {
	if f.device == nil {
		return 0
	}
	return f.device.GetVolume()
}

func (f *MediaFetcher) SetVolume(v float64) {
	if f.device != nil {
		f.device.SetVolume(v)
	}
}

func (f *MediaFetcher) IsMuted() bool {
	return f.device != nil && f.device.IsMuted()
}

func (f *MediaFetcher) SetMuted(m bool) {
	if f.device != nil {
		f.device.SetMuted(m)
	}
}

// dispatchExit implements spec §4.9's shutdown: it is idempotent (only
// the first caller's error, if any, sticks), marks the session no longer
// in use, cancels the audio-packet context, and wakes every worker
// blocked on resumeCond/exitCond so they observe inUse==false promptly.
func (f *MediaFetcher) dispatchExit(err error) {
	if !f.inUse.CompareAndSwap(true, false) {
		return
	}

	if err != nil {
		f.errMu.Lock()
		if f.err == nil {
			f.err = err
		}
		f.errMu.Unlock()
	}

	f.cancel()

	f.mu.Lock()
	f.resumeCond.Broadcast()
	f.exitCond.Broadcast()
	f.mu.Unlock()
}

// Close tears down the audio device (if any) and the decoder. Call after
// Join returns.
func (f *MediaFetcher) Close() error {
	var firstErr error
	if f.device != nil {
		if err := f.device.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := f.decoder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// publishFrame rescales/narrows a decoded video frame and publishes it
// as the current PixelData.
func (f *MediaFetcher) publishFrame(fr decode.Frame) error {
	data, err := f.videoConv.Convert(fr.Image)
	if err != nil {
		return err
	}
	pd, err := imgpkg.FromRGB24Bytes(f.cfg.ScaleWidth, f.cfg.ScaleHeight, data)
	if err != nil {
		return err
	}
	f.frameMu.Lock()
	f.frame = pd
	f.frameMu.Unlock()
	f.frameChanged.Store(true)
	return nil
}

// videoFetchLoop is spec's video fetch thread: always spawned, even for
// audio-only or image media.
func (f *MediaFetcher) videoFetchLoop() {
	defer f.wg.Done()

	switch f.kind {
	case probe.Image:
		f.runImageFetch()
	case probe.Audio:
		f.runVisualizerFetch()
	default:
		f.runVideoFetch()
	}
}

func (f *MediaFetcher) runImageFetch() {
	frames, err := f.decoder.NextFrames(reisen.StreamVideo)
	if err != nil {
		f.dispatchExit(err)
		return
	}
	if len(frames) > 0 {
		if err := f.publishFrame(frames[0]); err != nil {
			f.dispatchExit(err)
			return
		}
	}
	f.waitForExit()
}

func (f *MediaFetcher) waitForExit() {
	f.mu.Lock()
	for f.inUse.Load() {
		f.exitCond.Wait()
	}
	f.mu.Unlock()
}

func (f *MediaFetcher) runVisualizerFetch() {
	channels := 1
	if f.audioRing != nil {
		channels = f.audioRing.Channels()
	}
	window := make([]float32, 256*channels)

	for f.inUse.Load() {
		if f.audioRing != nil {
			n := f.audioRing.PeekInto(256, window)
			pd := renderVisualizerFrame(window[:n*uint64(channels)], channels, f.cfg.ScaleWidth, f.cfg.ScaleHeight)
			f.frameMu.Lock()
			f.frame = pd
			f.frameMu.Unlock()
			f.frameChanged.Store(true)
		}
		sleepOrExit(f, visualizerPeriod)
	}
}

func (f *MediaFetcher) runVideoFetch() {
	localEpoch := f.msgVideoSeekEpoch.Load()

	for f.inUse.Load() {
		if epoch := f.msgVideoSeekEpoch.Load(); epoch != localEpoch {
			localEpoch = epoch
			target := time.Duration(f.seekTargetNanos.Load())
			if err := f.decoder.JumpToTime(target); err != nil {
				f.dispatchExit(err)
				return
			}
			continue
		}

		if !f.clock.IsPlaying() {
			f.mu.Lock()
			for !f.clock.IsPlaying() && f.inUse.Load() {
				f.resumeCond.Wait()
			}
			f.mu.Unlock()
			continue
		}

		frames, err := f.decoder.NextFrames(reisen.StreamVideo)
		if err != nil {
			f.dispatchExit(err)
			return
		}
		if len(frames) == 0 {
			f.dispatchExit(nil)
			return
		}

		for _, fr := range frames {
			for f.inUse.Load() && f.clock.GetTime(f.nowFunc()) < fr.PTS.Seconds() {
				if epoch := f.msgVideoSeekEpoch.Load(); epoch != localEpoch {
					break
				}
				time.Sleep(videoPaceSleep)
			}
			if !f.inUse.Load() {
				return
			}
			if err := f.publishFrame(fr); err != nil {
				f.dispatchExit(err)
				return
			}
		}
	}
}

// audioDispatchLoop is spec's audio dispatch thread.
func (f *MediaFetcher) audioDispatchLoop() {
	defer f.wg.Done()

	localEpoch := f.msgAudioSeekEpoch.Load()

	for f.inUse.Load() {
		if epoch := f.msgAudioSeekEpoch.Load(); epoch != localEpoch {
			localEpoch = epoch
			target := time.Duration(f.seekTargetNanos.Load())
			if err := f.decoder.JumpToTime(target); err != nil {
				f.dispatchExit(err)
				return
			}
			f.audioRing.Clear(target.Seconds())
			continue
		}

		if !f.clock.IsPlaying() {
			f.mu.Lock()
			deadline := time.Now().Add(resumeWaitTimeout)
			for !f.clock.IsPlaying() && f.inUse.Load() && time.Now().Before(deadline) {
				f.resumeCond.Wait()
			}
			f.mu.Unlock()
			continue
		}

		pkt, err := f.audioSrc.ReadAudioPacket(f.ctx)
		if err != nil {
			f.dispatchExit(err)
			return
		}
		if len(pkt.PCM) == 0 {
			f.dispatchExit(nil)
			return
		}

		channels := pkt.Channels
		if channels == 0 {
			channels = f.decoder.AudioFormat().Channels
		}

		samples := pcmBytesToFloat32(pkt.PCM)
		resampled, err := f.resampler.Convert(samples)
		if err != nil {
			f.dispatchExit(err)
			return
		}

		nFrames := uint64(len(resampled) / channels)
		written := uint64(0)
		for written < nFrames && f.inUse.Load() {
			if epoch := f.msgAudioSeekEpoch.Load(); epoch != localEpoch {
				break
			}
			remain := nFrames - written
			start := written * uint64(channels)
			if f.audioRing.TryWriteInto(remain, resampled[start:], audioWriteTimeout) {
				written = nFrames
			}
		}
	}
}

// durationWatchdogLoop is spec's duration watchdog thread: every 100ms it
// checks for end-of-media, and separately checks the A/V desync
// diagnostic, restarting the audio device if it exceeds the threshold.
func (f *MediaFetcher) durationWatchdogLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()

	for f.inUse.Load() {
		<-ticker.C
		if !f.inUse.Load() {
			return
		}

		duration := f.decoder.Duration()
		if duration > 0 && f.clock.GetTime(f.nowFunc()) >= duration.Seconds() {
			f.dispatchExit(nil)
			return
		}

		f.checkAVDesync()
	}
}

// checkAVDesync restarts the audio device when its ring buffer's time
// source has drifted more than desyncThreshold from the media clock.
// Video self-syncs via the clock so its desync is by construction 0.
func (f *MediaFetcher) checkAVDesync() {
	if f.audioRing == nil || f.device == nil {
		return
	}
	drift := math.Abs(f.audioRing.CurrentTime() - f.clock.GetTime(f.nowFunc()))
	if drift <= desyncThreshold.Seconds() {
		return
	}
	if err := f.device.Stop(); err != nil {
		f.dispatchExit(fmt.Errorf("restart audio device: %w", err))
		return
	}
	if err := f.device.Start(); err != nil {
		f.dispatchExit(fmt.Errorf("restart audio device: %w", err))
	}
}

func sleepOrExit(f *MediaFetcher, d time.Duration) {
	select {
	case <-f.ctx.Done():
	case <-time.After(d):
	}
}

// pcmBytesToFloat32 decodes little-endian 16-bit PCM into normalized
// float32 samples, the same convention internal/resample assumes.
func pcmBytesToFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// renderVisualizerFrame draws a simple amplitude waveform from a window
// of interleaved audio samples, used as the video fetch thread's output
// for audio-only media (spec §9 open-question resolution).
func renderVisualizerFrame(samples []float32, channels, width, height int) *imgpkg.PixelData {
	canvas := imgpkg.NewCanvas(width, height)
	mid := height / 2
	color := imgpkg.RGB24{R: 0, G: 200, B: 255}

	frames := 0
	if channels > 0 {
		frames = len(samples) / channels
	}
	if frames == 0 || width <= 0 {
		return canvas.GetImage()
	}

	prevRow := mid
	for x := 0; x < width; x++ {
		idx := x * frames / width
		if idx >= frames {
			idx = frames - 1
		}
		amp := samples[idx*channels]
		row := mid - int(amp*float32(mid))
		if row < 0 {
			row = 0
		}
		if row >= height {
			row = height - 1
		}
		if x == 0 {
			prevRow = row
		}
		canvas.Line(prevRow, max(0, x-1), row, x, color)
		prevRow = row
	}
	return canvas.GetImage()
}
