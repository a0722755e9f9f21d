package kryoflux

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genFluxOpcode appends one randomly chosen flux-carrying opcode to b and
// returns the raw value it contributes, on top of whatever Ovl16 folding the
// caller has already accumulated, so the caller can track the expected
// decoded FluxValue independently of the decoder under test.
func genFluxOpcode(t *rapid.T, b *streamBuilder) FluxValue {
	switch rapid.IntRange(0, 2).Draw(t, "opcodeKind") {
	case 0:
		v := byte(rapid.IntRange(0x0E, 0xFF).Draw(t, "flux1"))
		b.flux1(v)
		return FluxValue(v)
	case 1:
		v := uint16(rapid.IntRange(0, 0x07FF).Draw(t, "flux2"))
		b.flux2(v)
		return FluxValue(v)
	default:
		v := uint16(rapid.IntRange(0, 0xFFFF).Draw(t, "flux3"))
		b.flux3(v)
		return FluxValue(v)
	}
}

// buildWellFormedStream assembles a random but internally consistent stream:
// a run of flux opcodes (optionally preceded by an Ovl16 or a Nop), bracketed
// by index pulses, ending with a successful StreamEnd and an EOF. It mirrors
// parseStream's own Ovl16-folding rule (pendingFlux accumulates across Ovl16s
// and Nops, then resets to zero at the next Flux opcode) to build the exact
// flux_values the decoder is required to reconstruct (spec §8, round-trip).
func buildWellFormedStream(t *rapid.T) (data []byte, expectedFlux []FluxValue, indexCount int) {
	b := &streamBuilder{}
	indexCount = rapid.IntRange(0, 4).Draw(t, "indexCount")
	fluxPerSegment := rapid.IntRange(1, 6).Draw(t, "fluxPerSegment")

	segments := indexCount
	if segments == 0 {
		segments = 1
	}
	var pending FluxValue
	for s := 0; s < segments; s++ {
		if indexCount > 0 {
			b.index(0, 0)
		}
		for i := 0; i < fluxPerSegment; i++ {
			if rapid.Bool().Draw(t, "useOverflow") {
				b.ovl16()
				pending += 0x10000
			}
			if rapid.Bool().Draw(t, "useNop") {
				b.nop2()
			}
			pending += genFluxOpcode(t, b)
			expectedFlux = append(expectedFlux, pending)
			pending = 0
		}
	}
	b.streamInfo(1)
	b.streamEnd(hwStatusOK)
	b.eof()
	return b.bytes(), expectedFlux, indexCount
}

func TestDecodeWellFormedStreamsNeverError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data, expectedFlux, indexCount := buildWellFormedStream(t)

		decoded, err := Decode(data)
		require.NoErrorf(t, err, "well-formed stream failed to decode: % x", data)
		require.Equal(t, len(expectedFlux), decoded.FluxCount())
		// Round-trip property (spec §8): the concatenation of the emitted
		// (Flux+Ovl16) opcode values reconstructs flux_values exactly.
		require.Equal(t, expectedFlux, decoded.FluxValues())
		require.Equal(t, indexCount, decoded.IndexCount())
		require.Equal(t, maxInt(0, indexCount-1), decoded.RevolutionCount())

		stat := decoded.Statistic()
		require.LessOrEqual(t, stat.MinFlux, stat.MaxFlux)
		if indexCount > 1 {
			require.LessOrEqual(t, stat.MinRPM, stat.AvgRPM)
			require.LessOrEqual(t, stat.AvgRPM, stat.MaxRPM)
		}

		for i, idx := range decoded.Indexes() {
			require.GreaterOrEqualf(t, idx.FluxPosition, 0, "index %d has a negative flux position", i)
			if i > 0 {
				require.GreaterOrEqualf(t, idx.FluxPosition, decoded.Indexes()[i-1].FluxPosition,
					"index %d is positioned before index %d", i, i-1)
			}
			// Structural invariant (spec §8): 0 <= pre_index_time[k] <=
			// flux_values[flux_position[k]] whenever that flux exists.
			if idx.FluxPosition < decoded.FluxCount() {
				require.GreaterOrEqualf(t, idx.PreIndexTime, FluxValue(0), "index %d has a negative PreIndexTime", i)
				require.LessOrEqualf(t, idx.PreIndexTime, decoded.FluxValues()[idx.FluxPosition],
					"index %d PreIndexTime %d exceeds its flux's value %d", i, idx.PreIndexTime, decoded.FluxValues()[idx.FluxPosition])
			}
		}
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// TestDecodeTruncationNeverPanics fault-injects by truncating a well-formed
// stream at a random byte offset and checks only that the decoder never
// panics; the returned error, if any, is not asserted.
func TestDecodeTruncationNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data, _, _ := buildWellFormedStream(t)
		if len(data) < 2 {
			return
		}
		cut := rapid.IntRange(0, len(data)-2).Draw(t, "cut")
		truncated := data[:cut]

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Decode panicked on truncated input (%d/%d bytes): %v", cut, len(data), r)
			}
		}()
		_, _ = Decode(truncated)
	})
}

// TestDecodeCorruptedOpcodeByteNeverPanics flips a single byte at a random
// offset in an otherwise well-formed stream and checks only that decoding
// completes without panicking; a corrupted leading byte may or may not
// produce a valid-looking but different stream, so no output is asserted.
func TestDecodeCorruptedOpcodeByteNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data, _, _ := buildWellFormedStream(t)
		if len(data) == 0 {
			return
		}
		offset := rapid.IntRange(0, len(data)-1).Draw(t, "offset")
		corrupted := append([]byte(nil), data...)
		corrupted[offset] = byte(rapid.IntRange(0, 255).Draw(t, "replacement"))

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Decode panicked on corrupted input (offset %d): %v", offset, r)
			}
		}()
		_, _ = Decode(corrupted)
	})
}

// TestDecodeMissingEOFIsRejected is a targeted fault-injection case:
// a stream with flux data and an EOF but no preceding StreamEnd block
// decodes successfully (StreamEnd is informational, not required), while one
// missing the EOF block entirely is always rejected.
func TestDecodeMissingEOFIsRejected(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	b.eof()
	_, err := Decode(b.bytes())
	require.NoError(t, err, "EOF without a StreamEnd block should still decode")

	b2 := &streamBuilder{}
	b2.flux1(0x20)
	b2.streamEnd(hwStatusOK)
	_, err = Decode(b2.bytes())
	require.ErrorIs(t, err, ErrMissingEnd)
}
