package calibrate

import "sort"

// DistanceStats holds percentile statistics over a set of distances.
type DistanceStats struct {
	Count  int
	Min    float64
	Max    float64
	Median float64
	P10    float64
	P90    float64
}

// ComputeStats sorts a copy of the distances and derives percentiles.
// Returns nil for an empty input.
func ComputeStats(distances []float64) *DistanceStats {
	if len(distances) == 0 {
		return nil
	}
	sorted := make([]float64, len(distances))
	copy(sorted, distances)
	sort.Float64s(sorted)

	return &DistanceStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 50),
		P10:    percentile(sorted, 10),
		P90:    percentile(sorted, 90),
	}
}

// percentile returns the nearest-rank percentile of sorted data.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p / 100 * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// DistanceToSimilarity converts a cosine distance to a similarity. For unit
// vectors cosine distance is approximately 1 - similarity.
func DistanceToSimilarity(distance float64) float64 {
	sim := 1.0 - distance
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
