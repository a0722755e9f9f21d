package kryoflux

import (
	"errors"
	"testing"
)

func TestAlignIndexesNoIndexes(t *testing.T) {
	pr := &parseResult{fluxCount: 5}
	indexes, fluxCount, err := alignIndexes(pr)
	if err != nil {
		t.Fatalf("alignIndexes: %v", err)
	}
	if indexes != nil {
		t.Errorf("indexes = %v, want nil", indexes)
	}
	if fluxCount != 5 {
		t.Errorf("fluxCount = %d, want 5", fluxCount)
	}
}

func TestAlignIndexesStructuralInvariants(t *testing.T) {
	data := minimalStream()
	pr, err := parseStream(data)
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}

	indexes, _, err := alignIndexes(pr)
	if err != nil {
		t.Fatalf("alignIndexes: %v", err)
	}
	if len(indexes) != len(pr.indexRecords) {
		t.Fatalf("got %d aligned indexes, want %d", len(indexes), len(pr.indexRecords))
	}

	for i, idx := range indexes {
		if idx.FluxPosition < 0 {
			t.Errorf("index %d: negative FluxPosition %d", i, idx.FluxPosition)
		}
		if i > 0 && idx.FluxPosition < indexes[i-1].FluxPosition {
			t.Errorf("index %d: FluxPosition %d precedes previous index's %d", i, idx.FluxPosition, indexes[i-1].FluxPosition)
		}
	}
}

func TestAlignIndexesUnplaceableIndexIsAnError(t *testing.T) {
	// An index record referencing a stream position past every flux the
	// parser actually recorded can never be placed on a transition.
	pr := &parseResult{
		fluxCount:           2,
		fluxValues:          []FluxValue{10, 20, 0},
		fluxStreamPositions: []uint32{0, 10, 20},
		indexRecords: []rawIndexRecord{
			{streamPos: 999},
		},
	}
	_, _, err := alignIndexes(pr)
	if err == nil {
		t.Fatal("alignIndexes: want an error for an unplaceable index, got nil")
	}
}

// TestAlignIndexesIcoLessThanPreIsAnError exercises fault-injection scenario
// 6 (spec §8): a Flux3 block whose OOB Index marker reports a stream
// position falling between two Ovl16 markers such that the flux's folded
// overflow count (ico) is smaller than the marker-to-flux byte gap (pre).
// This is the mid-loop branch at align.go's "ico < pre" check, distinct from
// TestAlignIndexesUnplaceableIndexIsAnError's tail-of-loop "placed N of M"
// check.
func TestAlignIndexesIcoLessThanPreIsAnError(t *testing.T) {
	b := &streamBuilder{}
	b.ovl16()
	b.flux3(0x0005)
	b.ovl16()
	b.flux3(0x0003)
	// Declares a stream position (3) that sits between the two Ovl16
	// markers (at offsets 0 and 4), so the landing flux's single folded
	// overflow (ico=1) is less than the byte gap to it (pre=2).
	b.indexAt(3, 0, 0)
	b.streamEnd(hwStatusOK)
	b.eof()

	_, err := Decode(b.bytes())
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("Decode: err = %v, want ErrMissingIndex", err)
	}
}
