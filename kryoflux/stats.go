package kryoflux

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// finalizeStatistics implements spec §4.5's aggregates over the parser's
// flux extremes and the aligner's completed index records. sampleClockHz is
// the decoder's resolved sample clock (default or info-text override).
func finalizeStatistics(pr *parseResult, indexes []IndexRecord, sampleClockHz float64) Statistic {
	s := Statistic{
		MinFlux: pr.minFlux,
		MaxFlux: pr.maxFlux,
	}

	if pr.statDataTime > 0 {
		s.AvgBPS = float64(pr.statDataCount) * 1000 / float64(pr.statDataTime)
	}

	m := len(indexes)
	if m > 1 {
		rotations := make([]float64, 0, m-1)
		for i := 1; i < m; i++ {
			rotations = append(rotations, float64(indexes[i].RotationTime))
		}
		sum := floats.Sum(rotations)
		minRotation := floats.Min(rotations)
		maxRotation := floats.Max(rotations)

		s.AvgRPM = sampleClockHz * float64(m-1) * 60 / sum
		s.MaxRPM = sampleClockHz * 60 / minRotation
		s.MinRPM = sampleClockHz * 60 / maxRotation
	}

	// Documented deviation from the reference decoder (spec §9, open
	// question 2): compute the true mean of consecutive flux-position
	// differences instead of repeating a single pair's distance.
	if m > 2 {
		deltas := make([]float64, 0, m-1)
		for i := 1; i < m; i++ {
			deltas = append(deltas, float64(indexes[i].FluxPosition-indexes[i-1].FluxPosition))
		}
		s.AvgFluxPerRev = stat.Mean(deltas, nil)
	}

	return s
}
