// serialcomm/serialcomm.go
package serialcomm

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/exp/slices"
)

// Serial drivers.
const (
	DriverTarm  = "tarm"
	DriverBugst = "bugst"
	DriverTerm  = "term"
)

// ValidBaudRates are the rates the loader firmware can be built for.
var ValidBaudRates = []int{300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// DefaultBaudRate matches the loader firmware default.
const DefaultBaudRate = 115200

type SessionHandler func(s *Session)

type SerialConfig struct {
	PortName     string
	BaudRate     int
	ReadTimeout  time.Duration
	Driver       string // tarm (default), bugst or term
	MaxLength    int    // receiver only: largest body accepted, 0 for no limit
	ReadCallback SessionHandler
}

// Port is an open serial device.
type Port interface {
	io.ReadWriter
	Flush() error
	Close() error
}

type SerialReceiver interface {
	Start() error
	Close() error
}

// ValidateConfig checks a configuration before a port is opened.
func ValidateConfig(cfg *SerialConfig) error {
	if cfg == nil {
		return fmt.Errorf("serial config cannot be nil")
	}
	if cfg.PortName == "" {
		return fmt.Errorf("port name is required")
	}
	if !slices.Contains(ValidBaudRates, cfg.BaudRate) {
		return fmt.Errorf("unsupported baud rate %d", cfg.BaudRate)
	}
	switch cfg.Driver {
	case "", DriverTarm, DriverBugst, DriverTerm:
	default:
		return fmt.Errorf("unknown serial driver %q", cfg.Driver)
	}
	return nil
}
