package image

import "github.com/drgolem/tmediago/internal/mediaerr"

// Palette is an unordered set of RGB24 colors used for nearest-color
// quantization.
type Palette struct {
	Colors []RGB24
}

// distanceSquared computes the weighted-RGB color distance metric of spec
// §4.11. The weighting by mean red value approximates perceptual
// non-uniformity in RGB space more cheaply than a full Lab conversion;
// go-colorful's built-in distance functions use a different metric, so
// this formula is reproduced verbatim rather than delegated.
func distanceSquared(a, b RGB24) int64 {
	rmean := (int64(a.R) + int64(b.R)) / 2
	dr := int64(a.R) - int64(b.R)
	dg := int64(a.G) - int64(b.G)
	db := int64(a.B) - int64(b.B)

	return ((512+rmean)*dr*dr)>>8 + 4*dg*dg + ((767-rmean)*db*db)>>8
}

// FindClosestColorIndex linearly scans palette for the entry minimizing
// the weighted-RGB distance to input. Fails with ErrEmptyPalette if the
// palette has no entries.
func FindClosestColorIndex(input RGB24, palette []RGB24) (int, error) {
	if len(palette) == 0 {
		return 0, mediaerr.ErrEmptyPalette
	}

	best := 0
	bestDist := distanceSquared(input, palette[0])
	for i := 1; i < len(palette); i++ {
		d := distanceSquared(input, palette[i])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, nil
}
