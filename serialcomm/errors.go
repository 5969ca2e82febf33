package serialcomm

import "fmt"

// OpenError indicates that a port could not be opened or configured.
// No protocol bytes have been sent when it is returned.
type OpenError struct {
	PortName string
	Driver   string
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s (%s): %v", e.PortName, e.Driver, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// FrameError indicates a malformed upload stream seen by the Decoder.
type FrameError struct {
	Offset int // byte offset within the current session, '@' is 0
	Got    byte
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed session at offset %d: %s (got 0x%02X)", e.Offset, e.Reason, e.Got)
}
