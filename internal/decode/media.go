package decode

import (
	"time"

	"github.com/erparts/reisen"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

// batchSize bounds how many packets MediaDecoder pulls from the demuxer
// per next_frames attempt before re-checking whether a frame was produced,
// per spec §4.7.
const batchSize = 10

// AudioFormat snapshots the codec parameters of the media's audio stream.
type AudioFormat struct {
	SampleRate int
	Channels   int
}

// VideoFormat snapshots the codec parameters of the media's video stream.
type VideoFormat struct {
	Width, Height int
}

// MediaDecoder demuxes one container via reisen and fans packets out to
// per-stream StreamDecoders, exposing timing metadata and coordinated
// cross-stream seek (spec component C7).
type MediaDecoder struct {
	path     string
	media    *reisen.Media
	video    *StreamDecoder
	audio    *StreamDecoder
	duration time.Duration

	audioFormat AudioFormat
	videoFormat VideoFormat
}

// Open opens path, demuxes its stream list, and prepares per-stream
// decoders. At least one of {video, audio} must exist, per spec §3's
// MediaDecoder invariant.
func Open(path string) (*MediaDecoder, error) {
	m, err := reisen.NewMedia(path)
	if err != nil {
		return nil, mediaerr.NewIoError(path, err)
	}
	if err := m.OpenDecode(); err != nil {
		m.Close()
		return nil, mediaerr.NewExternalLibError(0, "open decode", err)
	}

	d := &MediaDecoder{path: path, media: m}

	videoStreams := m.VideoStreams()
	audioStreams := m.AudioStreams()

	if len(videoStreams) == 0 && len(audioStreams) == 0 {
		m.CloseDecode()
		m.Close()
		return nil, mediaerr.NewExternalLibError(0, "no decodable streams", nil)
	}

	if len(videoStreams) > 0 {
		vs := videoStreams[0]
		if err := vs.Open(); err != nil {
			m.CloseDecode()
			m.Close()
			return nil, mediaerr.NewExternalLibError(0, "open video stream", err)
		}
		d.video = newVideoStreamDecoder(vs)
		w, h := vs.Width(), vs.Height()
		d.videoFormat = VideoFormat{Width: w, Height: h}
		if vdur, err := vs.Duration(); err == nil && vdur > d.duration {
			d.duration = vdur
		}
	}

	if len(audioStreams) > 0 {
		as := audioStreams[0]
		if err := as.Open(); err != nil {
			m.CloseDecode()
			m.Close()
			return nil, mediaerr.NewExternalLibError(0, "open audio stream", err)
		}
		d.audio = newAudioStreamDecoder(as)
		d.audioFormat = AudioFormat{SampleRate: as.SampleRate(), Channels: as.ChannelCount()}
		if adur, err := as.Duration(); err == nil && adur > d.duration {
			d.duration = adur
		}
	}

	return d, nil
}

// Path is the source file path.
func (d *MediaDecoder) Path() string { return d.path }

// Duration is the overall media duration.
func (d *MediaDecoder) Duration() time.Duration { return d.duration }

// HasVideo / HasAudio report which streams are present.
func (d *MediaDecoder) HasVideo() bool { return d.video != nil }
func (d *MediaDecoder) HasAudio() bool { return d.audio != nil }

// AudioFormat / VideoFormat return the cached codec parameters.
func (d *MediaDecoder) AudioFormat() AudioFormat { return d.audioFormat }
func (d *MediaDecoder) VideoFormat() VideoFormat { return d.videoFormat }

// NextFrames drains the target stream's decoder; if its queue is empty, it
// pulls batches of packets from the demuxer (routing each to the correct
// StreamDecoder's FIFO) and retries until frames are produced or the
// demuxer reaches EOF. Returns an empty slice (not an error) on EOF.
func (d *MediaDecoder) NextFrames(kind reisen.StreamType) ([]Frame, error) {
	target := d.decoderFor(kind)
	if target == nil {
		return nil, mediaerr.ErrInvalidArgument
	}

	for {
		frames, err := target.DecodeNext()
		if err != nil {
			return nil, err
		}
		if len(frames) > 0 {
			return frames, nil
		}

		eof, err := d.fillBatch()
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, nil
		}
	}
}

// fillBatch pulls up to batchSize packets from the demuxer, routing each
// to its StreamDecoder. Returns eof=true once the demuxer has no more
// packets.
func (d *MediaDecoder) fillBatch() (eof bool, err error) {
	for i := 0; i < batchSize; i++ {
		pkt, ok, err := d.media.ReadPacket()
		if err != nil {
			return false, mediaerr.NewExternalLibError(0, "read packet", err)
		}
		if !ok {
			return true, nil
		}

		switch pkt.Type() {
		case reisen.StreamVideo:
			if d.video != nil && pkt.StreamIndex() == d.video.streamIndex() {
				d.video.PushPacket(pkt)
			}
		case reisen.StreamAudio:
			if d.audio != nil && pkt.StreamIndex() == d.audio.streamIndex() {
				d.audio.PushPacket(pkt)
			}
		}
	}
	return false, nil
}

func (d *MediaDecoder) decoderFor(kind reisen.StreamType) *StreamDecoder {
	switch kind {
	case reisen.StreamVideo:
		return d.video
	case reisen.StreamAudio:
		return d.audio
	}
	return nil
}

// JumpToTime seeks the demuxer to target, resets every StreamDecoder, and
// forward-discards frames on each stream until a frame with
// pts >= target is observed (or the stream reaches EOF). Precondition:
// 0 <= target <= Duration().
func (d *MediaDecoder) JumpToTime(target time.Duration) error {
	if target < 0 || target > d.duration {
		return mediaerr.ErrInvalidRange
	}

	if err := d.media.Seek(target); err != nil {
		return mediaerr.NewExternalLibError(0, "seek", err)
	}

	for _, sd := range []*StreamDecoder{d.video, d.audio} {
		if sd == nil {
			continue
		}
		sd.Reset()

		if err := discardUntil(target, func() ([]Frame, error) {
			return d.NextFrames(sd.Kind())
		}); err != nil {
			return err
		}
	}

	return nil
}

// discardUntil repeatedly calls nextFrames, discarding frames until the
// last frame of a batch reaches target or nextFrames reports EOF (an empty
// batch). This is the seek-consistency guarantee of JumpToTime: the next
// frame a caller observes after a seek to target has pts >= target.
func discardUntil(target time.Duration, nextFrames func() ([]Frame, error)) error {
	for {
		frames, err := nextFrames()
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return nil // EOF: undershoot past target with nothing decodable
		}
		last := frames[len(frames)-1]
		if last.PTS >= target {
			return nil
		}
	}
}

// Close releases the demuxer and every opened stream.
func (d *MediaDecoder) Close() error {
	if d.video != nil && d.video.video != nil {
		d.video.video.Close()
	}
	if d.audio != nil && d.audio.audio != nil {
		d.audio.audio.Close()
	}
	if err := d.media.CloseDecode(); err != nil {
		d.media.Close()
		return mediaerr.NewExternalLibError(0, "close decode", err)
	}
	d.media.Close()
	return nil
}
