package kryoflux

import "fmt"

// parseResult holds everything the stream parser produces for the aligner
// and statistics finalizer to consume.
type parseResult struct {
	fluxValues          []FluxValue // includes a trailing sentinel entry
	fluxStreamPositions []uint32    // parallel to fluxValues, including the sentinel
	fluxCount           int         // real emitted flux count, excludes the sentinel
	indexRecords        []rawIndexRecord
	infoText            string
	minFlux             FluxValue
	maxFlux             FluxValue
	statDataCount       uint32
	statDataTime        uint32
	statDataTrans       uint32
}

// parseStream performs the single linear walk described in spec §4.3,
// folding Ovl16/Flux1/Flux2/Flux3 opcodes into flux_values[] and dispatching
// OOB blocks to their handlers. It validates every stream-position
// invariant as it goes and returns the first violation encountered.
func parseStream(data []byte) (*parseResult, error) {
	res := &parseResult{minFlux: ^FluxValue(0)}

	var (
		pos          int
		streamPos    uint32
		pendingFlux  FluxValue
		lastStreamPos uint32
		lastIndexPos uint32
		eofSeen      bool
		sawStreamEnd bool
		hwCode       uint32
	)

	emit := func() {
		res.fluxValues = append(res.fluxValues, pendingFlux)
		res.fluxStreamPositions = append(res.fluxStreamPositions, streamPos)
		if pendingFlux < res.minFlux {
			res.minFlux = pendingFlux
		}
		if pendingFlux > res.maxFlux {
			res.maxFlux = pendingFlux
		}
		res.fluxCount++
		pendingFlux = 0
	}

	for pos < len(data) {
		h := data[pos]
		kind, ok := classify(h)
		if !ok {
			return nil, fmt.Errorf("%w at offset %d", ErrInvalidCode, pos)
		}

		var blockLen int
		if kind == blockOOB {
			if pos+4 > len(data) {
				return nil, fmt.Errorf("%w: OOB header at offset %d", ErrMissingData, pos)
			}
			subtype := data[pos+1]
			if subtype == oobEOF {
				blockLen = 4
			} else {
				size := int(data[pos+2]) | int(data[pos+3])<<8
				blockLen = 4 + size
			}
		} else {
			blockLen = fixedBlockLength(kind)
		}
		if pos+blockLen > len(data) {
			return nil, fmt.Errorf("%w at offset %d", ErrMissingData, pos)
		}
		block := data[pos : pos+blockLen]

		switch kind {
		case blockOvl16:
			pendingFlux += 0x10000
		case blockFlux1:
			pendingFlux += FluxValue(h)
			emit()
		case blockFlux2:
			pendingFlux += FluxValue(uint32(h)<<8 | uint32(block[1]))
			emit()
		case blockFlux3:
			pendingFlux += FluxValue(uint32(block[1])<<8 | uint32(block[2]))
			emit()
		case blockNop1, blockNop2, blockNop3:
			// No flux effect.
		case blockOOB:
			subtype := block[1]
			switch subtype {
			case oobStreamInfo:
				if len(block) < 12 {
					return nil, fmt.Errorf("%w: StreamInfo payload at offset %d", ErrMissingData, pos)
				}
				encoderStreamPos := readU32LE(block, 4)
				transferTimeMs := readU32LE(block, 8)
				if streamPos != encoderStreamPos {
					return nil, fmt.Errorf("%w: StreamInfo reported %d, decoder at %d (offset %d)",
						ErrWrongPosition, encoderStreamPos, streamPos, pos)
				}
				if streamPos != lastStreamPos {
					res.statDataCount += streamPos - lastStreamPos
					res.statDataTime += transferTimeMs
					res.statDataTrans++
					lastStreamPos = streamPos
				}
			case oobIndex:
				if len(block) < 16 {
					return nil, fmt.Errorf("%w: Index payload at offset %d", ErrMissingData, pos)
				}
				rec := rawIndexRecord{
					streamPos:     readU32LE(block, 4),
					sampleCounter: readU32LE(block, 8),
					indexCounter:  readU32LE(block, 12),
				}
				res.indexRecords = append(res.indexRecords, rec)
				// Documented deviation from the reference decoder (spec §9,
				// open question 1): read the record just stored, not the
				// next (uninitialized) slot.
				lastIndexPos = res.indexRecords[len(res.indexRecords)-1].streamPos
			case oobStreamEnd:
				if len(block) < 12 {
					return nil, fmt.Errorf("%w: StreamEnd payload at offset %d", ErrMissingData, pos)
				}
				encoderStreamPos := readU32LE(block, 4)
				hwCode = readU32LE(block, 8)
				sawStreamEnd = true
				if hwCode == hwStatusOK && streamPos != encoderStreamPos {
					return nil, fmt.Errorf("%w: StreamEnd reported %d, decoder at %d (offset %d)",
						ErrWrongPosition, encoderStreamPos, streamPos, pos)
				}
			case oobInfo:
				size := int(block[2]) | int(block[3])<<8
				var payload string
				if size > 0 {
					payload = string(block[4 : 4+size-1])
				}
				if res.infoText != "" {
					res.infoText += ", "
				}
				res.infoText += payload
			case oobEOF:
				eofSeen = true
			default:
				return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidOOB, subtype, pos)
			}
		}

		if kind != blockOOB {
			streamPos += uint32(blockLen)
		}
		pos += blockLen
	}

	// Trailing sentinel: consulted by the aligner when the final index
	// pulse lands at (or beyond) the last written flux.
	res.fluxValues = append(res.fluxValues, pendingFlux)
	res.fluxStreamPositions = append(res.fluxStreamPositions, streamPos)

	if sawStreamEnd {
		switch hwCode {
		case hwStatusOK:
		case hwStatusBufferFault:
			return nil, fmt.Errorf("%w (hw code %d)", ErrDevBuffer, hwCode)
		case hwStatusIndexTimeout:
			return nil, fmt.Errorf("%w (hw code %d)", ErrDevIndex, hwCode)
		default:
			return nil, fmt.Errorf("%w (hw code %d)", ErrTransfer, hwCode)
		}
	}
	if !eofSeen {
		return nil, ErrMissingEnd
	}
	if len(res.indexRecords) > 0 && streamPos < lastIndexPos {
		return nil, fmt.Errorf("%w: stream ended at %d, last index at %d",
			ErrIndexReference, streamPos, lastIndexPos)
	}

	return res, nil
}
