// Package resample wraps the SoXR-backed resampler for fixed-target-format
// PCM conversion (spec component C4), matching a single (src_format,
// dst_format) pair for the lifetime of the Resampler.
package resample

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"

	soxr "github.com/zaf/resample"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

// Resampler converts interleaved float32 PCM from one sample rate to
// another, channel count fixed for the lifetime of the instance. It
// drives the SoXR binding in 16-bit integer mode internally, since that's
// the quantization the backend's quality presets are tuned for.
type Resampler struct {
	srcRate  int
	dstRate  int
	channels int
	quality  soxr.Quality
}

// New locks in the (src, dst) sample-rate pair and channel count.
func New(srcRate, dstRate, channels int) *Resampler {
	return &Resampler{
		srcRate:  srcRate,
		dstRate:  dstRate,
		channels: channels,
		quality:  soxr.HighQ,
	}
}

// Convert resamples src (interleaved float32, -1..1) to the configured
// destination rate. If src and dst rates match, src is returned unchanged
// (no-op fast path, per the external resample primitive's own contract).
func (r *Resampler) Convert(src []float32) ([]float32, error) {
	if r.srcRate == r.dstRate {
		return src, nil
	}

	in := floatsToPCM16(src)

	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	rs, err := soxr.New(w, float64(r.srcRate), float64(r.dstRate), r.channels, soxr.I16, r.quality)
	if err != nil {
		return nil, mediaerr.NewExternalLibError(0, "create resampler", err)
	}

	if _, err := rs.Write(in); err != nil {
		rs.Close()
		return nil, mediaerr.NewExternalLibError(0, "resample write", err)
	}
	if err := rs.Close(); err != nil {
		return nil, mediaerr.NewExternalLibError(0, "resample close", err)
	}
	if err := w.Flush(); err != nil {
		return nil, mediaerr.NewExternalLibError(0, "resample flush", err)
	}

	return pcm16ToFloats(out.Bytes()), nil
}

func floatsToPCM16(src []float32) []byte {
	out := make([]byte, len(src)*2)
	for i, s := range src {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func pcm16ToFloats(src []byte) []float32 {
	n := len(src) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(src[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// String describes the configured conversion, useful for logging.
func (r *Resampler) String() string {
	return fmt.Sprintf("resample %dch %dHz->%dHz", r.channels, r.srcRate, r.dstRate)
}
