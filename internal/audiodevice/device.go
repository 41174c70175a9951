// Package audiodevice wraps the host PortAudio device in callback mode
// (spec component C8). The real-time callback never touches anything but
// an inner wait-free SPSC float ring; a queue-fill goroutine bridges that
// ring to whatever on_data source the playback engine configures.
package audiodevice

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/drgolem/go-portaudio/portaudio"

	"github.com/drgolem/tmediago/internal/mediaerr"
	"github.com/drgolem/tmediago/internal/ring"
)

// OnDataFunc fills dst (interleaved float32, dst's length is a multiple of
// channels) with up to len(dst)/channels frames, returning the number of
// frames actually written. Called from the queue-fill goroutine, never
// from the real-time callback itself.
type OnDataFunc func(dst []float32) (framesWritten int)

// Config is the device's fixed format, cached so start() can re-init after
// a stop() without the caller repeating itself.
type Config struct {
	DeviceIndex     int
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	// InnerQueueFrames sizes the wait-free SPSC ring between the
	// queue-fill goroutine and the real-time callback.
	InnerQueueFrames uint64
}

// Device is the callback-driven audio output wrapper. Safe for concurrent
// use: volume/mute are atomics, start/stop serialize under mu.
type Device struct {
	cfg    Config
	onData OnDataFunc

	mu     sync.Mutex
	stream *portaudio.PaStream
	torn   bool // true once stop() has fully uninitialized the device

	inner   *ring.Ring
	scratch []float32 // preallocated, reused every real-time callback

	muted  atomic.Bool
	volume atomic.Uint32 // bits of a float32 in [0,1]

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New constructs a Device with the given fixed config and on_data source.
// Volume starts at 1.0, unmuted.
func New(cfg Config, onData OnDataFunc) *Device {
	d := &Device{cfg: cfg, onData: onData}
	d.volume.Store(math.Float32bits(1.0))
	return d
}

// Start initializes the device (or re-initializes it from cached config
// if it was previously torn down by Stop) and begins the callback stream
// plus the queue-fill goroutine.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inner = ring.New(d.cfg.InnerQueueFrames, d.cfg.Channels, d.cfg.SampleRate, 0)
	d.scratch = make([]float32, d.cfg.FramesPerBuffer*d.cfg.Channels)

	d.stream = &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  d.cfg.DeviceIndex,
			ChannelCount: d.cfg.Channels,
			SampleFormat: portaudio.SampleFmtFloat32,
		},
		SampleRate: float64(d.cfg.SampleRate),
	}

	if err := d.stream.OpenCallback(d.cfg.FramesPerBuffer, d.audioCallback); err != nil {
		return mediaerr.NewExternalLibError(0, "open audio callback stream", err)
	}
	if err := d.stream.StartStream(); err != nil {
		return mediaerr.NewExternalLibError(0, "start audio stream", err)
	}

	d.torn = false
	d.stopChan = make(chan struct{})
	d.wg.Add(1)
	go d.queueFill()

	return nil
}

// Stop fully uninitializes the device rather than merely pausing it: some
// host audio subsystems drift out of sync if only paused (spec §4.8).
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.torn {
		return nil
	}

	if d.stopChan != nil {
		close(d.stopChan)
		d.wg.Wait()
		d.stopChan = nil
	}

	var err error
	if d.stream != nil {
		if stopErr := d.stream.StopStream(); stopErr != nil {
			err = mediaerr.NewExternalLibError(0, "stop audio stream", stopErr)
		}
		if closeErr := d.stream.CloseCallback(); closeErr != nil && err == nil {
			err = mediaerr.NewExternalLibError(0, "close audio stream", closeErr)
		}
		d.stream = nil
	}
	d.torn = true
	return err
}

// IsPlaying reports whether the stream is currently initialized.
func (d *Device) IsPlaying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.torn && d.stream != nil
}

// GetVolume / SetVolume operate on a clamped [0.0, 1.0] range; values
// outside are silently clamped (spec §4.8, open question resolved in
// DESIGN.md: no historical [0,2.0] behavior carried forward).
func (d *Device) GetVolume() float64 {
	return float64(math.Float32frombits(d.volume.Load()))
}

func (d *Device) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	d.volume.Store(math.Float32bits(float32(v)))
}

func (d *Device) IsMuted() bool   { return d.muted.Load() }
func (d *Device) SetMuted(m bool) { d.muted.Store(m) }

// audioCallback runs on PortAudio's real-time thread. It must not
// allocate, lock a contested mutex, or block: it only drains the inner
// wait-free ring into a preallocated scratch buffer, scaling by volume
// and zero-filling on mute or underrun, then encodes into output.
func (d *Device) audioCallback(
	input, output []byte,
	frameCount uint,
	timeInfo *portaudio.StreamCallbackTimeInfo,
	statusFlags portaudio.StreamCallbackFlags,
) portaudio.StreamCallbackResult {
	channels := d.cfg.Channels
	samplesNeeded := int(frameCount) * channels
	out := d.scratch[:samplesNeeded]

	framesAvailable := d.inner.ReadableFrames()
	framesToRead := uint64(frameCount)
	if framesAvailable < framesToRead {
		framesToRead = framesAvailable
	}

	if framesToRead > 0 {
		d.inner.ReadInto(framesToRead, out[:framesToRead*uint64(channels)])
	}
	samplesRead := int(framesToRead) * channels
	for i := samplesRead; i < samplesNeeded; i++ {
		out[i] = 0
	}

	if d.muted.Load() {
		for i := range out {
			out[i] = 0
		}
	} else if vol := math.Float32frombits(d.volume.Load()); vol != 1.0 {
		for i := range out {
			out[i] *= vol
		}
	}

	for i, s := range out {
		binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(s))
	}

	return portaudio.Continue
}

// queueFill bridges on_data into the inner SPSC ring. This is the
// dedicated "queue-fill" thread of spec §4.8/§5: it may block (briefly
// busy-waiting when the inner ring is full), but the real-time callback
// it feeds never does.
func (d *Device) queueFill() {
	defer d.wg.Done()

	chunk := make([]float32, d.cfg.FramesPerBuffer*d.cfg.Channels)

	for {
		select {
		case <-d.stopChan:
			return
		default:
		}

		n := d.onData(chunk)
		if n == 0 {
			continue
		}

		frames := uint64(n)
		written := uint64(0)
		for frames > 0 {
			writable := d.inner.WritableFrames()
			if writable == 0 {
				select {
				case <-d.stopChan:
					return
				default:
					continue
				}
			}
			toWrite := frames
			if writable < toWrite {
				toWrite = writable
			}
			start := written * uint64(d.cfg.Channels)
			end := (written + toWrite) * uint64(d.cfg.Channels)
			d.inner.WriteInto(toWrite, chunk[start:end])
			written += toWrite
			frames -= toWrite

			select {
			case <-d.stopChan:
				return
			default:
			}
		}
	}
}

// String describes the device config, useful for logging.
func (d *Device) String() string {
	return fmt.Sprintf("audiodevice(device=%d rate=%d ch=%d)", d.cfg.DeviceIndex, d.cfg.SampleRate, d.cfg.Channels)
}
