package serialcomm

import "errors"

func openTerm(cfg *SerialConfig) (Port, error) {
	return nil, errors.New("term driver is not available on windows")
}
