package kryoflux

import "testing"

func TestFinalizeStatisticsFluxExtremes(t *testing.T) {
	pr := &parseResult{minFlux: 10, maxFlux: 500}
	s := finalizeStatistics(pr, nil, DefaultSampleClockHz)
	if s.MinFlux != 10 || s.MaxFlux != 500 {
		t.Errorf("MinFlux/MaxFlux = %d/%d, want 10/500", s.MinFlux, s.MaxFlux)
	}
}

func TestFinalizeStatisticsAvgBPS(t *testing.T) {
	pr := &parseResult{statDataCount: 2000, statDataTime: 10}
	s := finalizeStatistics(pr, nil, DefaultSampleClockHz)
	want := 2000.0 * 1000 / 10
	if s.AvgBPS != want {
		t.Errorf("AvgBPS = %v, want %v", s.AvgBPS, want)
	}
}

func TestFinalizeStatisticsAvgBPSZeroTime(t *testing.T) {
	pr := &parseResult{statDataCount: 2000, statDataTime: 0}
	s := finalizeStatistics(pr, nil, DefaultSampleClockHz)
	if s.AvgBPS != 0 {
		t.Errorf("AvgBPS = %v, want 0 when no StreamInfo interval was observed", s.AvgBPS)
	}
}

func TestFinalizeStatisticsRPMRange(t *testing.T) {
	pr := &parseResult{}
	indexes := []IndexRecord{
		{RotationTime: 0}, // first index has no preceding rotation
		{RotationTime: 1000},
		{RotationTime: 1200},
		{RotationTime: 900},
	}
	s := finalizeStatistics(pr, indexes, DefaultSampleClockHz)
	if s.MinRPM > s.AvgRPM || s.AvgRPM > s.MaxRPM {
		t.Errorf("RPM ordering violated: min=%v avg=%v max=%v", s.MinRPM, s.AvgRPM, s.MaxRPM)
	}
	if s.MinRPM <= 0 || s.MaxRPM <= 0 {
		t.Errorf("RPM values must be positive: min=%v max=%v", s.MinRPM, s.MaxRPM)
	}
}

func TestFinalizeStatisticsAvgFluxPerRevTrueMean(t *testing.T) {
	pr := &parseResult{}
	// Three revolutions with strictly increasing flux-position gaps: the
	// documented fix computes the mean of those gaps, not a single
	// repeated pair's distance (spec §9, open question 2).
	indexes := []IndexRecord{
		{FluxPosition: 0},
		{FluxPosition: 100},
		{FluxPosition: 300},
		{FluxPosition: 700},
	}
	s := finalizeStatistics(pr, indexes, DefaultSampleClockHz)
	want := (100.0 + 200.0 + 400.0) / 3
	if s.AvgFluxPerRev != want {
		t.Errorf("AvgFluxPerRev = %v, want %v", s.AvgFluxPerRev, want)
	}
}

func TestFinalizeStatisticsAvgFluxPerRevNeedsThreeIndexes(t *testing.T) {
	pr := &parseResult{}
	indexes := []IndexRecord{{FluxPosition: 0}, {FluxPosition: 100}}
	s := finalizeStatistics(pr, indexes, DefaultSampleClockHz)
	if s.AvgFluxPerRev != 0 {
		t.Errorf("AvgFluxPerRev = %v, want 0 with fewer than 3 indexes", s.AvgFluxPerRev)
	}
}
