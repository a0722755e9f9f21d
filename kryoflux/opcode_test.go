package kryoflux

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		h    byte
		want blockKind
	}{
		{"flux2 low", 0x00, blockFlux2},
		{"flux2 high", 0x07, blockFlux2},
		{"nop1", 0x08, blockNop1},
		{"nop2", 0x09, blockNop2},
		{"nop3", 0x0A, blockNop3},
		{"ovl16", 0x0B, blockOvl16},
		{"flux3", 0x0C, blockFlux3},
		{"oob", 0x0D, blockOOB},
		{"flux1 low", 0x0E, blockFlux1},
		{"flux1 high", 0xFF, blockFlux1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := classify(tc.h)
			if !ok {
				t.Fatalf("classify(0x%02x) returned ok=false", tc.h)
			}
			if kind != tc.want {
				t.Errorf("classify(0x%02x) = %v, want %v", tc.h, kind, tc.want)
			}
		})
	}
}

func TestFixedBlockLength(t *testing.T) {
	cases := []struct {
		kind blockKind
		want int
	}{
		{blockFlux2, 2},
		{blockNop1, 1},
		{blockNop2, 2},
		{blockNop3, 3},
		{blockOvl16, 1},
		{blockFlux3, 3},
		{blockFlux1, 1},
	}
	for _, tc := range cases {
		if got := fixedBlockLength(tc.kind); got != tc.want {
			t.Errorf("fixedBlockLength(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
	// blockOOB has no fixed length; its block size comes from the payload
	// size field instead.
	if got := fixedBlockLength(blockOOB); got != 0 {
		t.Errorf("fixedBlockLength(blockOOB) = %d, want 0", got)
	}
}
