package kryoflux

import (
	"fmt"

	"github.com/sergev/floppy/adapter"

	"github.com/charmbracelet/log"
	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
)

// KryoFlux boards identify themselves on USB, unlike the Greaseweazle and
// SuperCard Pro adapters, which tunnel their protocol over a virtual
// serial port.
const (
	VendorID  = 0x03eb
	ProductID = 0x6124
)

const (
	bulkInEndpoint  = 0x82
	bulkOutEndpoint = 0x01
)

func init() {
	adapter.RegisterUSBAdapter(NewClient)
}

// Client wraps a USB connection to a KryoFlux board.
type Client struct {
	ctx          *gousb.Context
	dev          *gousb.Device
	ifaceDone    func()
	in           *gousb.InEndpoint
	out          *gousb.OutEndpoint
	serialNumber string
}

// NewClient opens the first KryoFlux board found on the USB bus.
// portDetails is ignored; it exists only to satisfy adapter.AdapterFactory,
// which the serial-based adapters use to pass along a discovered COM port.
func NewClient(portDetails *enumerator.PortDetails) (adapter.FloppyAdapter, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(VendorID), gousb.ID(ProductID))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to open KryoFlux USB device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("no KryoFlux device found (VID=0x%04x PID=0x%04x)", VendorID, ProductID)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to claim KryoFlux interface: %w", err)
	}

	in, err := intf.InEndpoint(bulkInEndpoint)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to open KryoFlux bulk-in endpoint: %w", err)
	}

	out, err := intf.OutEndpoint(bulkOutEndpoint)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to open KryoFlux bulk-out endpoint: %w", err)
	}

	serialNumber, err := dev.SerialNumber()
	if err != nil {
		log.Warn("failed to read KryoFlux serial number", "err", err)
	}

	return &Client{
		ctx:          ctx,
		dev:          dev,
		ifaceDone:    done,
		in:           in,
		out:          out,
		serialNumber: serialNumber,
	}, nil
}

// PrintStatus prints KryoFlux status information to stdout.
func (c *Client) PrintStatus() {
	fmt.Printf("KryoFlux Adapter\n")
	fmt.Printf("Serial Number: %s\n", c.serialNumber)
	fmt.Printf("Status: Connected\n")
}

// Close releases the USB interface and device.
func (c *Client) Close() error {
	if c.ifaceDone != nil {
		c.ifaceDone()
	}
	var err error
	if c.dev != nil {
		err = c.dev.Close()
	}
	if c.ctx != nil {
		c.ctx.Close()
	}
	return err
}
