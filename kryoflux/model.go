package kryoflux

// FluxValue is a duration between two consecutive flux reversals, measured
// in sample clocks. Its upper 16 bits count the Ovl16 codes folded into it;
// its lower 16 bits are the residual sub-cell count from the terminating
// Flux1/Flux2/Flux3 opcode.
type FluxValue uint32

// Default clock frequencies, used unless the stream's own info text
// supplies "sck"/"ick" overrides (see resolveClocks and findInfoValue).
const (
	DefaultSampleClockHz = ((18_432_000.0 * 73) / 14) / 4
	DefaultIndexClockDiv = 8
)

// rawIndexRecord is the positional/timing data as read directly off the
// wire, before the aligner has placed it on a flux transition.
type rawIndexRecord struct {
	streamPos     uint32
	sampleCounter uint32
	indexCounter  uint32
}

// IndexRecord is a single index pulse, located on the flux array and timed
// relative to the flux transitions around it.
type IndexRecord struct {
	FluxPosition  int       // index into FluxValues identifying the spanning flux
	PreIndexTime  FluxValue // sample clocks from the start of that flux to the pulse
	RotationTime  FluxValue // sample clocks since the previous index (for the first, since stream start)
	SampleCounter uint32    // raw hardware sub-cell count at detection time
	IndexCounter  uint32    // raw free-running index-clock reading at detection time
}

// Statistic aggregates the per-revolution and per-flux measurements of a
// decoded stream.
type Statistic struct {
	AvgRPM        float64
	MinRPM        float64
	MaxRPM        float64
	AvgBPS        float64
	AvgFluxPerRev float64
	MinFlux       FluxValue
	MaxFlux       FluxValue
}

// DecodedStream is the read-only result of decoding a KryoFlux Stream file.
type DecodedStream struct {
	fluxValues    []FluxValue
	indexes       []IndexRecord
	infoText      string
	statistic     Statistic
	sampleClockHz float64
	indexClockHz  float64
}

// FluxValues returns the ordered flux transition durations, in sample clocks.
func (d *DecodedStream) FluxValues() []FluxValue { return d.fluxValues }

// FluxCount returns the number of flux transitions decoded.
func (d *DecodedStream) FluxCount() int { return len(d.fluxValues) }

// Indexes returns the completed index records, in encounter order.
func (d *DecodedStream) Indexes() []IndexRecord { return d.indexes }

// IndexCount returns the number of index pulses decoded.
func (d *DecodedStream) IndexCount() int { return len(d.indexes) }

// RevolutionCount returns the number of complete revolutions bracketed by
// consecutive index pulses.
func (d *DecodedStream) RevolutionCount() int {
	if len(d.indexes) == 0 {
		return 0
	}
	return len(d.indexes) - 1
}

// InfoText returns the concatenated hardware info payloads.
func (d *DecodedStream) InfoText() string { return d.infoText }

// Statistic returns the aggregated RPM/throughput/flux statistics.
func (d *DecodedStream) Statistic() Statistic { return d.statistic }

// SampleClockHz returns the sample clock frequency used to interpret flux
// durations, either the default or a value recovered from the info text.
func (d *DecodedStream) SampleClockHz() float64 { return d.sampleClockHz }

// IndexClockHz returns the index clock frequency used to interpret index
// counters, either the default or a value recovered from the info text.
func (d *DecodedStream) IndexClockHz() float64 { return d.indexClockHz }

// FindInfo searches the info text for "name=value" and returns value, or
// the empty string if name is not present. See findInfoValue for the
// documented deviation from the reference decoder's offset-0 rejection.
func (d *DecodedStream) FindInfo(name string) string {
	return findInfoValue(d.infoText, name)
}
