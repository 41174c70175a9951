package decode

import (
	"context"
	"time"

	"github.com/erparts/reisen"
)

// AudioPacket is a chunk of decoded PCM handed to a consumer, alongside
// its presentation timestamp and the format it was decoded at.
type AudioPacket struct {
	PCM      []byte
	PTS      time.Duration
	Channels int
}

// AudioPacketProvider is the interface the audio dispatch thread consumes:
// "give me the next packet of decoded audio regardless of where it came
// from." AudioSource below is the concrete adapter over a MediaDecoder's
// audio stream; the shape itself is kept source-agnostic so the dispatch
// thread is not coupled to reisen.
type AudioPacketProvider interface {
	ReadAudioPacket(ctx context.Context) (*AudioPacket, error)
}

// AudioSource adapts a MediaDecoder's audio StreamDecoder into an
// AudioPacketProvider, so the resample/ring-buffer pipeline downstream
// never has to know packets originated from reisen specifically.
type AudioSource struct {
	decoder *MediaDecoder
}

// NewAudioSource wraps d's audio stream. d must have HasAudio() == true.
func NewAudioSource(d *MediaDecoder) *AudioSource {
	return &AudioSource{decoder: d}
}

// ReadAudioPacket pulls the next decoded audio frame, blocking (via
// NextFrames' internal demux loop) until one is available or EOF. Returns
// a packet with nil PCM at EOF.
func (s *AudioSource) ReadAudioPacket(ctx context.Context) (*AudioPacket, error) {
	frames, err := s.decoder.NextFrames(reisen.StreamAudio)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return &AudioPacket{}, nil
	}
	f := frames[0]
	return &AudioPacket{PCM: f.PCM, PTS: f.PTS, Channels: f.Channels}, nil
}
