package hfe

import "fmt"

// ReadDCF returns an error: reading DCF images is not implemented.
func ReadDCF(filename string) (*Disk, error) {
	return nil, fmt.Errorf("DCF format not yet implemented")
}

// WriteDCF returns an error: writing DCF images is not implemented.
func WriteDCF(filename string, disk *Disk) error {
	return fmt.Errorf("DCF format not yet implemented")
}
