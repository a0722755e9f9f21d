package adapter

import (
	"testing"

	"go.bug.st/serial/enumerator"
)

func TestRegisterAdapterAppendsWithVidPid(t *testing.T) {
	before := len(registeredAdapters)
	factory := func(portDetails *enumerator.PortDetails) (FloppyAdapter, error) {
		return nil, nil
	}
	RegisterAdapter(0x1234, 0x5678, factory)
	defer func() { registeredAdapters = registeredAdapters[:before] }()

	if len(registeredAdapters) != before+1 {
		t.Fatalf("len(registeredAdapters) = %d, want %d", len(registeredAdapters), before+1)
	}
	got := registeredAdapters[len(registeredAdapters)-1]
	if got.VendorID != 0x1234 || got.ProductID != 0x5678 {
		t.Errorf("VendorID/ProductID = %#x/%#x, want 0x1234/0x5678", got.VendorID, got.ProductID)
	}
}

func TestRegisterUSBAdapterUsesZeroVidPid(t *testing.T) {
	before := len(registeredAdapters)
	factory := func(portDetails *enumerator.PortDetails) (FloppyAdapter, error) {
		return nil, nil
	}
	RegisterUSBAdapter(factory)
	defer func() { registeredAdapters = registeredAdapters[:before] }()

	got := registeredAdapters[len(registeredAdapters)-1]
	if got.VendorID != 0 || got.ProductID != 0 {
		t.Errorf("VendorID/ProductID = %#x/%#x, want 0/0 for a USB-only adapter", got.VendorID, got.ProductID)
	}
}
