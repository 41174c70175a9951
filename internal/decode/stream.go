// Package decode wraps github.com/erparts/reisen, the FFmpeg-backed demux
// library, into the engine's StreamDecoder/MediaDecoder shape (spec
// components C6/C7): one packet FIFO and decode-retry loop per stream,
// fanned out by a single demuxer.
package decode

import (
	"image"
	"time"

	"github.com/erparts/reisen"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

// AllowedFailures bounds the number of consecutive hard decode errors a
// StreamDecoder tolerates before surfacing mediaerr.ErrDecode.
const AllowedFailures = 5

// State is a StreamDecoder's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateBuffered
	StateDraining
)

// Frame is a decoded unit: a video image or a raw PCM chunk, tagged with
// its presentation timestamp.
type Frame struct {
	PTS      time.Duration
	Image    image.Image // set for video frames
	PCM      []byte      // set for audio frames
	Channels int         // audio channel count, 0 for video frames
}

// packet is the demuxer's minimal per-stream unit, queued between
// MediaDecoder's routing loop and a StreamDecoder's own decode_next.
type packet struct {
	raw *reisen.Packet
}

// frameSource is the single decode call a StreamDecoder drives per queued
// packet: "decode whatever's pending and hand back at most one frame."
// Pulled out of decodePacket so tests can drive DecodeNext's retry-budget
// logic with a fake, instead of a live reisen stream.
type frameSource interface {
	decodeFrame() (frame *Frame, ok bool, err error)
}

// reisenVideoSource adapts a reisen video stream to frameSource.
type reisenVideoSource struct {
	stream *reisen.VideoStream
}

func (s reisenVideoSource) decodeFrame() (*Frame, bool, error) {
	vf, ok, err := s.stream.ReadVideoFrame()
	if err != nil {
		return nil, false, err
	}
	if !ok || vf == nil {
		return nil, false, nil
	}
	return &Frame{PTS: vf.PresentationOffset(), Image: vf.Image()}, true, nil
}

// reisenAudioSource adapts a reisen audio stream to frameSource.
type reisenAudioSource struct {
	stream *reisen.AudioStream
}

func (s reisenAudioSource) decodeFrame() (*Frame, bool, error) {
	af, ok, err := s.stream.ReadAudioFrame()
	if err != nil {
		return nil, false, err
	}
	if !ok || af == nil {
		return nil, false, nil
	}
	return &Frame{
		PTS:      af.PresentationOffset(),
		PCM:      af.Data(),
		Channels: s.stream.ChannelCount(),
	}, true, nil
}

// StreamDecoder owns one demuxed stream (audio or video), its packet FIFO,
// and decode-retry bookkeeping. Constructed by MediaDecoder; not safe for
// concurrent use by more than one goroutine at a time.
type StreamDecoder struct {
	kind     reisen.StreamType
	video    *reisen.VideoStream
	audio    *reisen.AudioStream
	source   frameSource
	queue    []packet
	state    State
	failures int

	timeBase     float64 // seconds per PTS unit, informational for callers
	avgFrameDur  time.Duration
	startOffset  time.Duration
}

func newVideoStreamDecoder(s *reisen.VideoStream) *StreamDecoder {
	num, den := s.FrameRate()
	var avg time.Duration
	if num > 0 {
		avg = time.Second * time.Duration(den) / time.Duration(num)
	}
	return &StreamDecoder{
		kind:        reisen.StreamVideo,
		video:       s,
		source:      reisenVideoSource{stream: s},
		state:       StateIdle,
		avgFrameDur: avg,
	}
}

func newAudioStreamDecoder(s *reisen.AudioStream) *StreamDecoder {
	return &StreamDecoder{
		kind:   reisen.StreamAudio,
		audio:  s,
		source: reisenAudioSource{stream: s},
		state:  StateIdle,
	}
}

// Kind reports whether this decoder owns the video or audio stream.
func (d *StreamDecoder) Kind() reisen.StreamType { return d.kind }

// streamIndex returns the underlying demuxer stream index this decoder's
// packets must be routed to.
func (d *StreamDecoder) streamIndex() int {
	if d.video != nil {
		return d.video.Index()
	}
	return d.audio.Index()
}

// PushPacket appends a demuxed packet to the FIFO. No decoding side
// effects; decode_next drains it lazily.
func (d *StreamDecoder) PushPacket(p *reisen.Packet) {
	d.queue = append(d.queue, packet{raw: p})
	d.state = StateBuffered
}

// DecodeNext pops packets and feeds the underlying stream decoder until at
// least one frame is produced or the queue empties. A packet that yields
// no frame yet (the backend's try-again case) moves on to the next packet
// silently; a decode error counts as a hard failure and also moves on,
// until AllowedFailures consecutive hard errors surface mediaerr.ErrDecode.
// Frames are returned in PTS
// order (a single stream's packets are fed in FIFO order, and reisen's
// own per-stream decoder preserves PTS order internally).
func (d *StreamDecoder) DecodeNext() ([]Frame, error) {
	var frames []Frame

	for len(d.queue) > 0 {
		pkt := d.queue[0]
		d.queue = d.queue[1:]

		frame, err := d.decodePacket(pkt)
		if err != nil {
			d.failures++
			if d.failures >= AllowedFailures {
				d.state = StateIdle
				return nil, mediaerr.ErrDecode
			}
			continue // hard error below budget: retry with next packet
		}
		d.failures = 0
		if frame != nil {
			frames = append(frames, *frame)
			break
		}
	}

	if len(d.queue) == 0 {
		d.state = StateIdle
	}
	return frames, nil
}

func (d *StreamDecoder) decodePacket(pkt packet) (*Frame, error) {
	frame, ok, err := d.source.decodeFrame()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return frame, nil
}

// Reset flushes the packet FIFO and resets retry bookkeeping. Called on
// seek; reisen's own decoder context is stateless between ReadXFrame
// calls once the corresponding packets stop arriving, so there is no
// separate internal-decoder flush call to make here.
func (d *StreamDecoder) Reset() {
	d.queue = d.queue[:0]
	d.failures = 0
	d.state = StateIdle
}
