package kryoflux

import "testing"

func TestDecodeMinimalStream(t *testing.T) {
	decoded, err := Decode(minimalStream())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.FluxCount() != 33 {
		t.Errorf("FluxCount = %d, want 33", decoded.FluxCount())
	}
	if decoded.IndexCount() != 3 {
		t.Errorf("IndexCount = %d, want 3", decoded.IndexCount())
	}
	if decoded.RevolutionCount() != decoded.IndexCount()-1 {
		t.Errorf("RevolutionCount = %d, want %d", decoded.RevolutionCount(), decoded.IndexCount()-1)
	}
	if decoded.SampleClockHz() != DefaultSampleClockHz {
		t.Errorf("SampleClockHz = %v, want default %v", decoded.SampleClockHz(), DefaultSampleClockHz)
	}
	if decoded.IndexClockHz() != DefaultSampleClockHz/DefaultIndexClockDiv {
		t.Errorf("IndexClockHz = %v, want default/%d", decoded.IndexClockHz(), DefaultIndexClockDiv)
	}
}

func TestDecodeClockOverrideFromInfoText(t *testing.T) {
	b := &streamBuilder{}
	b.info("sck=24000000, ick=3000000")
	b.flux1(0x20)
	b.streamEnd(hwStatusOK)
	b.eof()

	decoded, err := Decode(b.bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.SampleClockHz() != 24000000 {
		t.Errorf("SampleClockHz = %v, want 24000000", decoded.SampleClockHz())
	}
	if decoded.IndexClockHz() != 3000000 {
		t.Errorf("IndexClockHz = %v, want 3000000", decoded.IndexClockHz())
	}
	if got := decoded.FindInfo("sck"); got != "24000000" {
		t.Errorf("FindInfo(sck) = %q, want %q", got, "24000000")
	}
}

func TestDecodeMalformedStreamReturnsError(t *testing.T) {
	_, err := Decode([]byte{0x0C, 0x00}) // truncated Flux3 block
	if err == nil {
		t.Fatal("Decode: want error for truncated stream, got nil")
	}
}
