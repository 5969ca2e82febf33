// serialcomm/port.go
package serialcomm

import (
	"github.com/tarm/serial"
)

// Open opens the configured port. A nil error means the port is ready for
// writes; the caller must Close it on every path.
func Open(cfg *SerialConfig) (Port, error) {
	if err := ValidateConfig(cfg); err != nil {
		name, driver := "", ""
		if cfg != nil {
			name, driver = cfg.PortName, cfg.Driver
		}
		return nil, &OpenError{PortName: name, Driver: driver, Err: err}
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverTarm
	}

	var (
		port Port
		err  error
	)
	switch driver {
	case DriverTarm:
		port, err = openTarm(cfg)
	case DriverBugst:
		port, err = openBugst(cfg)
	case DriverTerm:
		port, err = openTerm(cfg)
	}
	if err != nil {
		return nil, &OpenError{PortName: cfg.PortName, Driver: driver, Err: err}
	}
	return port, nil
}

func openTarm(cfg *SerialConfig) (Port, error) {
	portCfg := &serial.Config{
		Name:        cfg.PortName,
		Baud:        cfg.BaudRate,
		Parity:      serial.ParityNone,
		ReadTimeout: cfg.ReadTimeout,
	}
	port, err := serial.OpenPort(portCfg)
	if err != nil {
		return nil, err
	}
	return port, nil
}
