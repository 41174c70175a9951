package image

// GetScaleFactor returns the single scale factor that fits a (sw, sh)
// source into a (tw, th) target box while preserving aspect ratio.
func GetScaleFactor(sw, sh, tw, th int) float64 {
	fw := float64(tw) / float64(sw)
	fh := float64(th) / float64(sh)
	if fw < fh {
		return fw
	}
	return fh
}

// GetScaleSize scales (sw, sh) into the (tw, th) box preserving aspect
// ratio, rounding to the nearest whole pixel.
func GetScaleSize(sw, sh, tw, th int) (w, h int) {
	f := GetScaleFactor(sw, sh, tw, th)
	return int(float64(sw)*f + 0.5), int(float64(sh)*f + 0.5)
}

// BoundDims shrinks (sw, sh) to fit within (tw, th) only if it exceeds the
// bounds; it never upscales.
func BoundDims(sw, sh, tw, th int) (w, h int) {
	if sw <= tw && sh <= th {
		return sw, sh
	}
	return GetScaleSize(sw, sh, tw, th)
}
