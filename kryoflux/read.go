package kryoflux

import (
	"fmt"

	"github.com/sergev/floppy/config"
	"github.com/sergev/floppy/hfe"
	"github.com/sergev/floppy/pll"

	"github.com/charmbracelet/log"
)

const (
	densityDoubleDensity = 0
	minSupportedCylinder = 0
)

// fluxRevolutionNs converts the flux samples spanning one full revolution
// (between two consecutive index pulses) from sample-clock ticks to a
// cumulative nanosecond transition timeline, as consumed by pll.NewDecoder.
func fluxRevolutionNs(values []FluxValue, sampleClockHz float64) []uint64 {
	transitions := make([]uint64, 0, len(values))
	var accumulated float64
	for _, v := range values {
		accumulated += float64(v) / sampleClockHz * 1e9
		transitions = append(transitions, uint64(accumulated))
	}
	return transitions
}

// decodeFluxToMFM recovers raw MFM bitcells from one revolution of decoded
// KryoFlux samples using the shared SCP-style PLL, and packs them MSB-first.
func decodeFluxToMFM(values []FluxValue, sampleClockHz float64, bitRateKhz uint16) ([]byte, error) {
	transitions := fluxRevolutionNs(values, sampleClockHz)
	if len(transitions) == 0 {
		return nil, fmt.Errorf("no flux transitions in revolution")
	}

	decoder := pll.NewDecoder(transitions, bitRateKhz)
	_ = decoder.NextBit() // discard first half-bit, as the reference decoder does

	var bitcells []bool
	for {
		first := decoder.NextBit()
		second := decoder.NextBit()
		bitcells = append(bitcells, first, second)
		if decoder.IsDone() {
			break
		}
	}
	if len(bitcells) == 0 {
		return nil, fmt.Errorf("no bitcells generated")
	}

	mfmBytes := make([]byte, 0, (len(bitcells)+7)/8)
	var currentByte byte
	bitCount := 0
	for _, bit := range bitcells {
		if bit {
			currentByte |= 1 << (7 - bitCount)
		}
		bitCount++
		if bitCount == 8 {
			mfmBytes = append(mfmBytes, currentByte)
			currentByte = 0
			bitCount = 0
		}
	}
	if bitCount > 0 {
		mfmBytes = append(mfmBytes, currentByte)
	}
	return mfmBytes, nil
}

// roundRPM snaps a measured RPM to one of the two standard floppy speeds.
func roundRPM(rpm float64) uint16 {
	if rpm < 330 {
		return 300
	}
	return 360
}

// roundBitRate snaps a measured bit rate (kbps) to a standard density.
func roundBitRate(bps float64) uint16 {
	switch {
	case bps < 375:
		return 250
	case bps < 750:
		return 500
	default:
		return 1000
	}
}

// Read reads numberOfTracks cylinders via the KryoFlux board and returns the
// decoded image.
func (c *Client) Read(numberOfTracks int) (*hfe.Disk, error) {
	if err := c.configure(0, densityDoubleDensity, minSupportedCylinder, numberOfTracks-1); err != nil {
		return nil, fmt.Errorf("failed to configure KryoFlux board: %w", err)
	}

	disk := &hfe.Disk{
		Header: hfe.Header{
			NumberOfTrack:       uint8(numberOfTracks),
			NumberOfSide:        uint8(config.Heads),
			TrackEncoding:       hfe.ENC_ISOIBM_MFM,
			BitRate:             500,
			FloppyRPM:           300,
			FloppyInterfaceMode: hfe.IFM_IBMPC_DD,
			WriteProtected:      0xFF,
			WriteAllowed:        0xFF,
			SingleStep:          0xFF,
			Track0S0AltEncoding: 0xFF,
			Track0S0Encoding:    hfe.ENC_ISOIBM_MFM,
			Track0S1AltEncoding: 0xFF,
			Track0S1Encoding:    hfe.ENC_ISOIBM_MFM,
		},
		Tracks: make([]hfe.TrackData, numberOfTracks),
	}

	for cyl := 0; cyl < numberOfTracks; cyl++ {
		for side := 0; side < config.Heads; side++ {
			log.Info("reading track", "cyl", cyl, "side", side)

			if err := c.motorOn(side, cyl); err != nil {
				return nil, fmt.Errorf("failed to position cylinder %d side %d: %w", cyl, side, err)
			}

			streamData, err := c.captureStream()
			if err != nil {
				c.motorOff()
				return nil, fmt.Errorf("failed to capture stream for cylinder %d side %d: %w", cyl, side, err)
			}

			decoded, err := Decode(streamData)
			if err != nil {
				c.motorOff()
				return nil, fmt.Errorf("failed to decode stream for cylinder %d side %d: %w", cyl, side, err)
			}

			indexes := decoded.Indexes()
			if len(indexes) < 2 {
				c.motorOff()
				return nil, fmt.Errorf("cylinder %d side %d: fewer than two index pulses captured", cyl, side)
			}

			if cyl == 0 && side == 0 {
				stat := decoded.Statistic()
				disk.Header.FloppyRPM = roundRPM(stat.AvgRPM)
				disk.Header.BitRate = roundBitRate(stat.AvgBPS)
				if disk.Header.BitRate >= 750 {
					disk.Header.FloppyInterfaceMode = hfe.IFM_IBMPC_ED
				} else if disk.Header.BitRate >= 375 {
					disk.Header.FloppyInterfaceMode = hfe.IFM_IBMPC_HD
				}
			}

			revolution := decoded.FluxValues()[indexes[0].FluxPosition:indexes[1].FluxPosition]
			mfmBitstream, err := decodeFluxToMFM(revolution, decoded.SampleClockHz(), disk.Header.BitRate)
			if err != nil {
				c.motorOff()
				return nil, fmt.Errorf("failed to decode flux to MFM for cylinder %d side %d: %w", cyl, side, err)
			}

			if side == 0 {
				disk.Tracks[cyl].Side0 = mfmBitstream
			} else {
				disk.Tracks[cyl].Side1 = mfmBitstream
			}
		}
	}

	if err := c.motorOff(); err != nil {
		log.Warn("failed to stop motor", "err", err)
	}

	return disk, nil
}

// Erase is not supported on KryoFlux boards, which are read-only devices.
func (c *Client) Erase(numberOfTracks int) error {
	return fmt.Errorf("Erase is not supported for KryoFlux adapter")
}
