//go:build !windows

package serialcomm

import (
	"github.com/pkg/term"
)

func openTerm(cfg *SerialConfig) (Port, error) {
	t, err := term.Open(cfg.PortName, term.Speed(cfg.BaudRate), term.RawMode)
	if err != nil {
		return nil, err
	}
	if cfg.ReadTimeout > 0 {
		if err := t.SetReadTimeout(cfg.ReadTimeout); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}
