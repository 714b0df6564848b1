package serialmux

import "io"

// SerialPorter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real digitizer hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}
