package supercardpro

import "testing"

func TestCalculateRPMAndBitRateDefaultsWhenNoIndex(t *testing.T) {
	c := &Client{}
	fluxData := &FluxData{}
	rpm, bitRate := c.calculateRPMAndBitRate(fluxData)
	if rpm != 300 || bitRate != 250 {
		t.Errorf("RPM/bitRate = %d/%d, want 300/250 when IndexTime is zero", rpm, bitRate)
	}
}

func TestCalculateRPMAndBitRate300RPM250Kbps(t *testing.T) {
	c := &Client{}
	fluxData := &FluxData{}
	// 300 RPM: one revolution every 200ms = 8,000,000 * 25ns.
	fluxData.Info[0].IndexTime = 8000000
	// 250 kbps over 200ms: 250_000 bits/sec * 0.2s = 50000 bitcells.
	fluxData.Info[0].NrBitcells = 50000
	rpm, bitRate := c.calculateRPMAndBitRate(fluxData)
	if rpm != 300 {
		t.Errorf("RPM = %d, want 300", rpm)
	}
	if bitRate != 250 {
		t.Errorf("bitRate = %d, want 250", bitRate)
	}
}

func TestCalculateRPMAndBitRate360RPM500Kbps(t *testing.T) {
	c := &Client{}
	fluxData := &FluxData{}
	// 360 RPM: one revolution every 166.67ms.
	revolutionNs := 60e9 / 360.0
	fluxData.Info[0].IndexTime = uint32(revolutionNs / 25)
	// 500 kbps over ~166.67ms: 500_000 * 0.16667 ~= 83333 bitcells.
	fluxData.Info[0].NrBitcells = 83333
	rpm, bitRate := c.calculateRPMAndBitRate(fluxData)
	if rpm != 360 {
		t.Errorf("RPM = %d, want 360", rpm)
	}
	if bitRate != 500 {
		t.Errorf("bitRate = %d, want 500", bitRate)
	}
}

func TestGenerateEraseFluxCoversOneRevolution(t *testing.T) {
	c := &Client{}
	flux := c.generateEraseFlux()
	if len(flux) == 0 {
		t.Fatal("generateEraseFlux returned no data")
	}
	if len(flux)%2 != 0 {
		t.Fatalf("generateEraseFlux returned odd length %d, want a whole number of uint16 samples", len(flux))
	}
	// One revolution at 300 RPM is 8,000,000 units of 25ns; samples are big-endian uint16.
	var total uint32
	for i := 0; i+1 < len(flux); i += 2 {
		total += uint32(flux[i])<<8 | uint32(flux[i+1])
	}
	if total < 8000000 {
		t.Errorf("generateEraseFlux covers %d x 25ns, want at least 8000000 (one revolution)", total)
	}
}

func TestMfmToFluxTransitionsEmptyInput(t *testing.T) {
	if _, err := mfmToFluxTransitions(nil, 250); err == nil {
		t.Error("mfmToFluxTransitions(nil): want error for empty input")
	}
}

func TestMfmToFluxTransitionsFindsBitTransitions(t *testing.T) {
	// 0x80 = 10000000: a transition only at the first bitcell.
	transitions, err := mfmToFluxTransitions([]byte{0x80}, 250)
	if err != nil {
		t.Fatalf("mfmToFluxTransitions: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("len(transitions) = %d, want 1", len(transitions))
	}
	// Bitcell period at 250kbps: 1e9 / (250_000 * 2) = 2000ns. First bitcell ends at 2000ns.
	if transitions[0] != 2000 {
		t.Errorf("transitions[0] = %d, want 2000", transitions[0])
	}
}

func TestMfmToFluxTransitionsMonotonic(t *testing.T) {
	transitions, err := mfmToFluxTransitions([]byte{0xAA, 0x55}, 500)
	if err != nil {
		t.Fatalf("mfmToFluxTransitions: %v", err)
	}
	for i := 1; i < len(transitions); i++ {
		if transitions[i] <= transitions[i-1] {
			t.Fatalf("transitions not strictly increasing at %d: %d <= %d", i, transitions[i], transitions[i-1])
		}
	}
}

func TestEncodeFluxToSCPEmptyTransitionsProducesMinimalRevolution(t *testing.T) {
	data := encodeFluxToSCP(nil, 300)
	if len(data) == 0 {
		t.Fatal("encodeFluxToSCP(nil): want non-empty minimal revolution data")
	}
	if len(data)%2 != 0 {
		t.Fatalf("encodeFluxToSCP(nil) length = %d, want a whole number of uint16 samples", len(data))
	}
}

func TestEncodeFluxToSCPWithTransitions(t *testing.T) {
	data := encodeFluxToSCP([]uint64{2000, 4000, 9000}, 300)
	if len(data) == 0 {
		t.Fatal("encodeFluxToSCP: want non-empty output")
	}
	if len(data)%2 != 0 {
		t.Fatalf("encodeFluxToSCP length = %d, want a whole number of uint16 samples", len(data))
	}
}

func TestScpFluxIteratorNextFlux(t *testing.T) {
	fi := &scpFluxIterator{transitions: []uint64{1000, 2500, 4000}}
	if got := fi.NextFlux(); got != 1000 {
		t.Errorf("NextFlux() #1 = %d, want 1000", got)
	}
	if got := fi.NextFlux(); got != 1500 {
		t.Errorf("NextFlux() #2 = %d, want 1500", got)
	}
	if got := fi.NextFlux(); got != 1500 {
		t.Errorf("NextFlux() #3 = %d, want 1500", got)
	}
	if got := fi.NextFlux(); got != 0 {
		t.Errorf("NextFlux() past end = %d, want 0", got)
	}
}
