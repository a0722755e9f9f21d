package kryoflux

import "encoding/binary"

// streamBuilder assembles a well-formed KryoFlux Stream file byte-by-byte,
// tracking the running stream position the way parseStream does, so that
// OOB StreamInfo/StreamEnd blocks can carry a position that actually
// matches. The literal hex vector in spec.md §8 does not round-trip through
// the opcode classifier into a self-consistent stream, so tests build their
// own fixtures with this helper instead.
type streamBuilder struct {
	buf []byte
	pos uint32
}

func (b *streamBuilder) flux1(v byte) *streamBuilder {
	if v < 0x0E {
		panic("flux1 value must classify as blockFlux1 (>= 0x0E)")
	}
	b.buf = append(b.buf, v)
	b.pos++
	return b
}

func (b *streamBuilder) flux2(v uint16) *streamBuilder {
	if v > 0x07FF {
		panic("flux2 value must fit in an 11-bit leading-byte range (<= 0x07FF)")
	}
	b.buf = append(b.buf, byte(v>>8), byte(v))
	b.pos += 2
	return b
}

func (b *streamBuilder) flux3(v uint16) *streamBuilder {
	b.buf = append(b.buf, 0x0C, byte(v>>8), byte(v))
	b.pos += 3
	return b
}

func (b *streamBuilder) ovl16() *streamBuilder {
	b.buf = append(b.buf, 0x0B)
	b.pos++
	return b
}

func (b *streamBuilder) nop1() *streamBuilder {
	b.buf = append(b.buf, 0x08)
	b.pos++
	return b
}

func (b *streamBuilder) nop2() *streamBuilder {
	b.buf = append(b.buf, 0x09, 0x00)
	b.pos += 2
	return b
}

func (b *streamBuilder) nop3() *streamBuilder {
	b.buf = append(b.buf, 0x0A, 0x00, 0x00)
	b.pos += 3
	return b
}

func le32(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

// streamInfo appends an OOB StreamInfo block reporting the builder's
// current stream position, as the reference encoder does.
func (b *streamBuilder) streamInfo(transferTimeMs uint32) *streamBuilder {
	block := []byte{0x0D, oobStreamInfo, 8, 0}
	block = append(block, le32(b.pos)...)
	block = append(block, le32(transferTimeMs)...)
	b.buf = append(b.buf, block...)
	return b
}

func (b *streamBuilder) index(sampleCounter, indexCounter uint32) *streamBuilder {
	block := []byte{0x0D, oobIndex, 12, 0}
	block = append(block, le32(b.pos)...)
	block = append(block, le32(sampleCounter)...)
	block = append(block, le32(indexCounter)...)
	b.buf = append(b.buf, block...)
	return b
}

// indexAt is like index but reports an explicit stream position instead of
// the builder's current one, for exercising misalignment/error paths.
func (b *streamBuilder) indexAt(streamPos, sampleCounter, indexCounter uint32) *streamBuilder {
	block := []byte{0x0D, oobIndex, 12, 0}
	block = append(block, le32(streamPos)...)
	block = append(block, le32(sampleCounter)...)
	block = append(block, le32(indexCounter)...)
	b.buf = append(b.buf, block...)
	return b
}

func (b *streamBuilder) streamEnd(hwCode uint32) *streamBuilder {
	block := []byte{0x0D, oobStreamEnd, 8, 0}
	block = append(block, le32(b.pos)...)
	block = append(block, le32(hwCode)...)
	b.buf = append(b.buf, block...)
	return b
}

func (b *streamBuilder) info(text string) *streamBuilder {
	payload := append([]byte(text), 0x00)
	block := []byte{0x0D, oobInfo, byte(len(payload)), byte(len(payload) >> 8)}
	block = append(block, payload...)
	b.buf = append(b.buf, block...)
	return b
}

func (b *streamBuilder) eof() *streamBuilder {
	b.buf = append(b.buf, 0x0D, oobEOF, 0, 0)
	return b
}

func (b *streamBuilder) bytes() []byte {
	return b.buf
}

// minimalStream builds a small stream that decodes cleanly: two
// revolutions bracketed by three index pulses, a StreamInfo/StreamEnd pair
// reporting success, and the trailing EOF every stream requires.
func minimalStream() []byte {
	b := &streamBuilder{}
	b.index(0, 0)
	for i := 0; i < 16; i++ {
		b.flux1(0x20)
	}
	b.index(0, 0)
	for i := 0; i < 16; i++ {
		b.flux1(0x20)
	}
	b.index(0, 0)
	b.streamInfo(5)
	b.streamEnd(hwStatusOK)
	b.eof()
	return b.bytes()
}
