package kryoflux

import "fmt"

// alignIndexes implements spec §4.4: it walks the parsed flux array once,
// placing each raw index record on the flux transition it falls within and
// splitting that flux's duration into a pre-index and post-index (rotation)
// component. It may back-fill the parser's trailing sentinel flux value
// when the final index lands on it, and may extend fluxCount by one to
// activate that sentinel.
func alignIndexes(pr *parseResult) ([]IndexRecord, int, error) {
	m := len(pr.indexRecords)
	fluxCount := pr.fluxCount

	if m == 0 {
		return nil, fluxCount, nil
	}

	records := make([]IndexRecord, m)

	var (
		itime           uint64
		iidx            int
		prevPreIndex    uint64
		nextStreamPos   = pr.indexRecords[0].streamPos
	)

	for fidx := 0; fidx < fluxCount; fidx++ {
		itime += uint64(pr.fluxValues[fidx])

		if iidx >= m {
			continue
		}

		nfidx := fidx + 1
		if pr.fluxStreamPositions[nfidx] < nextStreamPos {
			continue
		}

		// Edge case: the index signal landed inside the very first flux.
		if fidx == 0 && pr.fluxStreamPositions[0] >= nextStreamPos {
			nfidx = 0
		}

		raw := pr.indexRecords[iidx]
		sampleCounter := raw.sampleCounter
		iftime := uint64(pr.fluxValues[nfidx])
		if sampleCounter == 0 {
			// Timer sampled exactly at the edge.
			sampleCounter = uint32(iftime & 0xFFFF)
		}

		if nfidx >= fluxCount && pr.fluxStreamPositions[nfidx] == nextStreamPos {
			iftime += uint64(sampleCounter)
			pr.fluxValues[nfidx] = FluxValue(iftime)
		}

		ico := iftime >> 16
		pre := uint64(pr.fluxStreamPositions[nfidx]) - uint64(nextStreamPos)
		if ico < pre {
			return nil, fluxCount, fmt.Errorf("%w: index %d (flux %d)", ErrMissingIndex, iidx, nfidx)
		}
		preIndexTime := (ico-pre)<<16 + uint64(sampleCounter)

		var itimeWork uint64
		if iidx > 0 {
			itimeWork = itime - prevPreIndex
		} else {
			itimeWork = itime
		}

		var rotationTime uint64
		if nfidx == 0 {
			rotationTime = preIndexTime
		} else {
			rotationTime = itimeWork + preIndexTime
		}

		records[iidx] = IndexRecord{
			FluxPosition:  nfidx,
			PreIndexTime:  FluxValue(preIndexTime),
			RotationTime:  FluxValue(rotationTime),
			SampleCounter: raw.sampleCounter,
			IndexCounter:  raw.indexCounter,
		}

		prevPreIndex = preIndexTime
		iidx++
		if iidx < m {
			nextStreamPos = pr.indexRecords[iidx].streamPos
		} else {
			nextStreamPos = 0
		}
		if nfidx != 0 {
			itime = 0
		}
	}

	if iidx < m {
		return nil, fluxCount, fmt.Errorf("%w: placed %d of %d", ErrMissingIndex, iidx, m)
	}

	if pr.indexRecords[m-1].streamPos >= uint32(fluxCount) {
		fluxCount++
	}

	return records, fluxCount, nil
}
