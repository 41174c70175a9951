// Package probe implements the file-probe shim of spec component C13:
// classify a path as Video, Audio, or Image by combining a quick
// extension lookup with opening the demux backend and inspecting its
// streams plus duration heuristics.
package probe

import (
	"path/filepath"
	"strings"

	"github.com/erparts/reisen"
)

// MediaKind is the tagged variant of spec §3.
type MediaKind int

const (
	Video MediaKind = iota
	Audio
	Image
)

func (k MediaKind) String() string {
	switch k {
	case Video:
		return "Video"
	case Audio:
		return "Audio"
	case Image:
		return "Image"
	default:
		return "Unknown"
	}
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true, ".webp": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".fla": true, ".wav": true, ".ogg": true, ".opus": true, ".m4a": true,
}

// Probe classifies path. It first checks the extension against known
// image/audio format lists (spec §6: "its container format matches a
// known image/audio format list"), then falls back to opening the demux
// backend and inspecting streams + duration.
func Probe(path string) (MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if imageExtensions[ext] {
		return Image, nil
	}
	if audioExtensions[ext] {
		return Audio, nil
	}

	m, err := reisen.NewMedia(path)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	hasVideo := len(m.VideoStreams()) > 0
	hasAudio := len(m.AudioStreams()) > 0

	var duration float64
	if hasVideo {
		if d, err := m.VideoStreams()[0].Duration(); err == nil {
			duration = d.Seconds()
		}
	} else if hasAudio {
		if d, err := m.AudioStreams()[0].Duration(); err == nil {
			duration = d.Seconds()
		}
	}

	return Classify(hasVideo, hasAudio, duration), nil
}

// Classify implements spec §6's MediaKind derivation rules in isolation
// from the demux backend, so callers that already have stream/duration
// facts (e.g. a MediaDecoder already opened by the fetcher) can reuse the
// decision table without re-probing the file.
func Classify(hasVideo, hasAudio bool, durationSeconds float64) MediaKind {
	switch {
	case hasVideo && !hasAudio && durationSeconds <= 0:
		return Image
	case !hasVideo && hasAudio:
		return Audio
	default:
		return Video
	}
}
