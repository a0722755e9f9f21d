package kryoflux

import "strconv"

// Decode parses a fully-materialized KryoFlux Stream file and returns the
// decoded flux transitions, index events, hardware info text and
// statistics. It performs the two-pass decode described in spec §2: a
// linear opcode walk (parseStream) followed by index-alignment analysis
// (alignIndexes) and statistics aggregation (finalizeStatistics).
func Decode(data []byte) (*DecodedStream, error) {
	pr, err := parseStream(data)
	if err != nil {
		return nil, err
	}

	indexes, fluxCount, err := alignIndexes(pr)
	if err != nil {
		return nil, err
	}

	sampleClockHz, indexClockHz := resolveClocks(pr.infoText)

	stream := &DecodedStream{
		fluxValues:    pr.fluxValues[:fluxCount],
		indexes:       indexes,
		infoText:      pr.infoText,
		sampleClockHz: sampleClockHz,
		indexClockHz:  indexClockHz,
	}
	stream.statistic = finalizeStatistics(pr, indexes, sampleClockHz)

	return stream, nil
}

// resolveClocks applies the "sck"/"ick" info-text overrides to the default
// sample/index clock frequencies, per spec §3's Clocks data model.
func resolveClocks(infoText string) (sampleClockHz, indexClockHz float64) {
	sampleClockHz = float64(DefaultSampleClockHz)
	indexClockHz = sampleClockHz / DefaultIndexClockDiv

	if v := findInfoValue(infoText, "sck"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			sampleClockHz = parsed
			indexClockHz = sampleClockHz / DefaultIndexClockDiv
		}
	}
	if v := findInfoValue(infoText, "ick"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			indexClockHz = parsed
		}
	}

	return sampleClockHz, indexClockHz
}
