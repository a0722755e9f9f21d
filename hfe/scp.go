package hfe

import "fmt"

// ReadSCP returns an error: reading SCP images is not implemented.
func ReadSCP(filename string) (*Disk, error) {
	return nil, fmt.Errorf("SCP format not yet implemented")
}

// WriteSCP returns an error: writing SCP images is not implemented.
func WriteSCP(filename string, disk *Disk) error {
	return fmt.Errorf("SCP format not yet implemented")
}
