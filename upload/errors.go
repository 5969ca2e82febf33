package upload

import "fmt"

// Stage names the part of the session a write belonged to.
type Stage string

const (
	StageStart     Stage = "start marker"
	StageData      Stage = "data"
	StageDelimiter Stage = "checksum delimiter"
	StageChecksum  Stage = "checksum"
	StageTerminate Stage = "terminate marker"
)

// WriteError indicates that the port rejected a write mid-session. The session
// is left incomplete and must be resent from the start marker.
type WriteError struct {
	Stage Stage

	// Address is the address counter when the write failed.
	Address uint

	// Written is the number of characters successfully written before the failure.
	Written int

	Err error
}

func (e *WriteError) Error() string {
	if e.Stage == StageData {
		return fmt.Sprintf("transport write failed at %s byte 0x%04X after %d characters: %v",
			e.Stage, e.Address, e.Written, e.Err)
	}
	return fmt.Sprintf("transport write failed at %s after %d characters: %v",
		e.Stage, e.Written, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
