package image

import "math/rand/v2"

// trials is the number of random-seed k-means runs (spec §4.11: T=5).
const trials = 5

// maxIterations bounds a single trial's assignment/update loop in case
// centroids oscillate instead of converging.
const maxIterations = 100

// Quantize reduces pixels to a palette of at most k colors via repeated
// k-means clustering: T random-seed trials, each alternating
// closest-centroid assignment and mean-update until centroids stabilize;
// the trial minimizing total intra-cluster squared distance wins.
// Coincident centroids in the winning trial's output are deduplicated.
func Quantize(pixels []RGB24, k int) (Palette, error) {
	if len(pixels) == 0 || k <= 0 {
		return Palette{}, nil
	}
	if k > len(pixels) {
		k = len(pixels)
	}

	var bestCentroids []RGB24
	bestCost := int64(-1)

	for t := 0; t < trials; t++ {
		centroids := seedCentroids(pixels, k)
		assignments := make([]int, len(pixels))

		for iter := 0; iter < maxIterations; iter++ {
			changed := assign(pixels, centroids, assignments)
			centroids = updateMeans(pixels, assignments, centroids)
			if !changed && iter > 0 {
				break
			}
		}

		cost := totalCost(pixels, centroids, assignments)
		if bestCost == -1 || cost < bestCost {
			bestCost = cost
			bestCentroids = centroids
		}
	}

	return Palette{Colors: dedupe(bestCentroids)}, nil
}

func seedCentroids(pixels []RGB24, k int) []RGB24 {
	idx := rand.Perm(len(pixels))
	centroids := make([]RGB24, k)
	for i := 0; i < k; i++ {
		centroids[i] = pixels[idx[i%len(idx)]]
	}
	return centroids
}

func assign(pixels []RGB24, centroids []RGB24, assignments []int) (changed bool) {
	for i, p := range pixels {
		best, _ := FindClosestColorIndex(p, centroids)
		if assignments[i] != best {
			assignments[i] = best
			changed = true
		}
	}
	return changed
}

func updateMeans(pixels []RGB24, assignments []int, prev []RGB24) []RGB24 {
	k := len(prev)
	sums := make([][3]int64, k)
	counts := make([]int64, k)

	for i, p := range pixels {
		c := assignments[i]
		sums[c][0] += int64(p.R)
		sums[c][1] += int64(p.G)
		sums[c][2] += int64(p.B)
		counts[c]++
	}

	out := make([]RGB24, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			out[c] = prev[c] // empty cluster: keep previous centroid
			continue
		}
		out[c] = RGB24{
			R: uint8(sums[c][0] / counts[c]),
			G: uint8(sums[c][1] / counts[c]),
			B: uint8(sums[c][2] / counts[c]),
		}
	}
	return out
}

func totalCost(pixels []RGB24, centroids []RGB24, assignments []int) int64 {
	var total int64
	for i, p := range pixels {
		total += distanceSquared(p, centroids[assignments[i]])
	}
	return total
}

func dedupe(colors []RGB24) []RGB24 {
	seen := make(map[RGB24]bool, len(colors))
	out := make([]RGB24, 0, len(colors))
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
