package kryoflux

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const streamReadBufferSize = 4096

// foundEOF reports whether data contains a complete walk of Stream opcodes
// terminated by an OOB EOF block. It reuses the same classifier the decoder
// uses, so a capture is considered complete exactly when Decode would find
// its terminating block.
func foundEOF(data []byte) bool {
	offset := 0
	for offset < len(data) {
		h := data[offset]
		kind, ok := classify(h)
		if !ok {
			return false
		}
		if kind != blockOOB {
			offset += fixedBlockLength(kind)
			continue
		}
		if offset+4 > len(data) {
			return false
		}
		subtype := data[offset+1]
		if subtype == oobEOF {
			return true
		}
		size := int(data[offset+2]) | int(data[offset+3])<<8
		if offset+4+size > len(data) {
			return false
		}
		offset += 4 + size
	}
	return false
}

// captureStream arms the board's stream mode and reads raw Stream file
// bytes from the bulk-in endpoint until an OOB EOF block appears or the
// capture times out.
func (c *Client) captureStream() ([]byte, error) {
	if err := c.streamOn(); err != nil {
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}
	defer func() {
		if err := c.streamOff(); err != nil {
			log.Warn("failed to stop stream", "err", err)
		}
	}()

	const (
		maxTotalTime  = 30 * time.Second
		noDataTimeout = 5 * time.Second
	)

	var streamData []byte
	buf := make([]byte, streamReadBufferSize)
	start := time.Now()
	lastData := time.Now()

	for {
		if time.Since(start) > maxTotalTime {
			if len(streamData) > 0 {
				return streamData, nil
			}
			return nil, fmt.Errorf("stream capture exceeded %v", maxTotalTime)
		}
		if time.Since(lastData) > noDataTimeout {
			if len(streamData) > 0 {
				return streamData, nil
			}
			return nil, fmt.Errorf("no stream data received within %v", noDataTimeout)
		}

		n, err := c.in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to read stream data: %w", err)
		}
		if n == 0 {
			continue
		}
		lastData = time.Now()
		streamData = append(streamData, buf[:n]...)

		if foundEOF(streamData) {
			return streamData, nil
		}
	}
}
