package kryoflux

import (
	"errors"
	"testing"
)

func TestParseStreamEmpty(t *testing.T) {
	b := &streamBuilder{}
	b.eof()

	pr, err := parseStream(b.bytes())
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	if pr.fluxCount != 0 {
		t.Errorf("fluxCount = %d, want 0", pr.fluxCount)
	}
	if pr.infoText != "" {
		t.Errorf("infoText = %q, want empty", pr.infoText)
	}
}

func TestParseStreamFluxAccumulation(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x10)          // 16
	b.ovl16()               // +65536
	b.flux1(0x05)           // +5, emits 65536+5
	b.flux2(0x0200)          // 512
	b.flux3(0x1234)          // 0x1234
	b.eof()

	pr, err := parseStream(b.bytes())
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	want := []FluxValue{16, 65536 + 5, 512, 0x1234}
	if pr.fluxCount != len(want) {
		t.Fatalf("fluxCount = %d, want %d", pr.fluxCount, len(want))
	}
	for i, w := range want {
		if pr.fluxValues[i] != w {
			t.Errorf("fluxValues[%d] = %d, want %d", i, pr.fluxValues[i], w)
		}
	}
}

func TestParseStreamNopsHaveNoFluxEffect(t *testing.T) {
	b := &streamBuilder{}
	b.nop1().nop2().nop3()
	b.flux1(0x40)
	b.eof()

	pr, err := parseStream(b.bytes())
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	if pr.fluxCount != 1 || pr.fluxValues[0] != 0x40 {
		t.Errorf("unexpected flux result: count=%d values=%v", pr.fluxCount, pr.fluxValues)
	}
}

func TestParseStreamInfoText(t *testing.T) {
	b := &streamBuilder{}
	b.info("host=kryoflux-dc, sck=24027428.5714285, ick=3003428.5714285625")
	b.eof()

	pr, err := parseStream(b.bytes())
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	want := "host=kryoflux-dc, sck=24027428.5714285, ick=3003428.5714285625"
	if pr.infoText != want {
		t.Errorf("infoText = %q, want %q", pr.infoText, want)
	}
}

func TestParseStreamMultipleInfoBlocksAreCommaJoined(t *testing.T) {
	b := &streamBuilder{}
	b.info("host=kryoflux-dc")
	b.info("sck=24027428.5714285")
	b.eof()

	pr, err := parseStream(b.bytes())
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	want := "host=kryoflux-dc, sck=24027428.5714285"
	if pr.infoText != want {
		t.Errorf("infoText = %q, want %q", pr.infoText, want)
	}
}

func TestParseStreamMissingEOF(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	// No eof().

	_, err := parseStream(b.bytes())
	if !errors.Is(err, ErrMissingEnd) {
		t.Fatalf("err = %v, want ErrMissingEnd", err)
	}
}

func TestParseStreamTruncatedBlock(t *testing.T) {
	data := []byte{0x0C, 0x01} // blockFlux3 declares 3 bytes, only 2 present
	_, err := parseStream(data)
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("err = %v, want ErrMissingData", err)
	}
}

func TestParseStreamTruncatedOOBHeader(t *testing.T) {
	data := []byte{0x0D, 0x02} // OOB header itself needs 4 bytes
	_, err := parseStream(data)
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("err = %v, want ErrMissingData", err)
	}
}

func TestParseStreamInfoPositionMismatch(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	// Hand-build a StreamInfo block reporting a position the decoder has
	// not actually reached yet.
	block := []byte{0x0D, oobStreamInfo, 8, 0}
	block = append(block, le32(999)...)
	block = append(block, le32(0)...)
	b.buf = append(b.buf, block...)
	b.eof()

	_, err := parseStream(b.bytes())
	if !errors.Is(err, ErrWrongPosition) {
		t.Fatalf("err = %v, want ErrWrongPosition", err)
	}
}

func TestParseStreamDeviceBufferFault(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	b.streamEnd(hwStatusBufferFault)
	b.eof()

	_, err := parseStream(b.bytes())
	if !errors.Is(err, ErrDevBuffer) {
		t.Fatalf("err = %v, want ErrDevBuffer", err)
	}
}

func TestParseStreamDeviceIndexTimeout(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	b.streamEnd(hwStatusIndexTimeout)
	b.eof()

	_, err := parseStream(b.bytes())
	if !errors.Is(err, ErrDevIndex) {
		t.Fatalf("err = %v, want ErrDevIndex", err)
	}
}

func TestParseStreamIndexReferenceBeyondStreamEnd(t *testing.T) {
	b := &streamBuilder{}
	b.flux1(0x20)
	b.indexAt(999, 0, 0) // declares a position never reached
	b.eof()

	_, err := parseStream(b.bytes())
	if !errors.Is(err, ErrIndexReference) {
		t.Fatalf("err = %v, want ErrIndexReference", err)
	}
}

func TestParseStreamUnknownOOBSubtype(t *testing.T) {
	data := []byte{0x0D, 0xFE, 0, 0}
	_, err := parseStream(data)
	if !errors.Is(err, ErrInvalidOOB) {
		t.Fatalf("err = %v, want ErrInvalidOOB", err)
	}
}
