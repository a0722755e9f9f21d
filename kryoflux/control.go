package kryoflux

import "fmt"

// KryoFlux host commands are short ASCII strings written to the bulk-out
// endpoint, e.g. "motor:0\n" or "density:0\n". The board answers each with
// a one-line "0\n"-terminated status on the same pipe.
func (c *Client) sendCommand(cmd string) error {
	if _, err := c.out.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("failed to send command %q: %w", cmd, err)
	}
	reply := make([]byte, 32)
	n, err := c.in.Read(reply)
	if err != nil {
		return fmt.Errorf("failed to read reply to %q: %w", cmd, err)
	}
	if n == 0 || reply[0] != '0' {
		return fmt.Errorf("command %q rejected by device: %q", cmd, reply[:n])
	}
	return nil
}

// configure selects the drive, density and track-range parameters the
// board will use for subsequent motor/stream commands.
func (c *Client) configure(device, density, minTrack, maxTrack int) error {
	if err := c.sendCommand(fmt.Sprintf("device:%d", device)); err != nil {
		return err
	}
	if err := c.sendCommand(fmt.Sprintf("density:%d", density)); err != nil {
		return err
	}
	if err := c.sendCommand(fmt.Sprintf("minmax:%d,%d", minTrack, maxTrack)); err != nil {
		return err
	}
	return nil
}

// motorOn spins up the drive motor and seeks to the given side/cylinder.
func (c *Client) motorOn(side, cyl int) error {
	if err := c.sendCommand(fmt.Sprintf("side:%d", side)); err != nil {
		return err
	}
	if err := c.sendCommand(fmt.Sprintf("track:%d", cyl)); err != nil {
		return err
	}
	return c.sendCommand("motor:1")
}

// motorOff stops the drive motor.
func (c *Client) motorOff() error {
	return c.sendCommand("motor:0")
}

// streamOn arms the board to begin emitting Stream file opcodes on the
// bulk-in endpoint.
func (c *Client) streamOn() error {
	return c.sendCommand("stream:1")
}

// streamOff disarms streaming. Errors are ignored by callers using this as
// a best-effort cleanup after a capture has already completed or failed.
func (c *Client) streamOff() error {
	return c.sendCommand("stream:0")
}
