package serialcomm

import (
	"time"

	"golang.org/x/exp/slices"
)

type decodeState int

const (
	stateIdle decodeState = iota
	stateHi
	stateLo
	stateDelim
	stateChecksum
	stateTerminate
)

// Decoder reassembles upload sessions from a byte stream. Bytes outside a
// session are ignored until the next '@'. An '@' inside a session abandons
// it and starts a new one, except in the checksum position where it is data.
type Decoder struct {
	maxLength int
	now       func() time.Time

	state    decodeState
	offset   int
	hi       byte
	data     []byte
	checksum byte
}

// NewDecoder returns a Decoder that rejects sessions longer than maxLength
// data bytes. Zero means no limit.
func NewDecoder(maxLength int) *Decoder {
	return &Decoder{
		maxLength: maxLength,
		now:       time.Now,
	}
}

// Pending reports whether a session has been started but not terminated.
func (d *Decoder) Pending() bool {
	return d.state != stateIdle
}

// Reset discards any partial session.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.offset = 0
	d.hi = 0
	d.data = nil
	d.checksum = 0
}

// Feed consumes p and returns the sessions it completed. When p contains a
// malformed session, Feed returns the sessions completed before it together
// with a *FrameError; the decoder is reset and the rest of p is discarded.
func (d *Decoder) Feed(p []byte) ([]*Session, error) {
	var sessions []*Session

	for i := 0; i < len(p); i++ {
		if d.state == stateIdle {
			idx := slices.Index(p[i:], '@')
			if idx < 0 {
				return sessions, nil
			}
			i += idx
			d.Reset()
			d.state = stateHi
			d.offset = 1
			continue
		}

		c := p[i]
		if c == '@' && d.state != stateChecksum {
			// a resent session starts over, the partial one is dropped
			d.Reset()
			d.state = stateHi
			d.offset = 1
			continue
		}

		switch d.state {
		case stateHi:
			if c == '=' {
				d.state = stateChecksum
				break
			}
			v, ok := hexValue(c)
			if !ok {
				return sessions, d.fail(c, "expected hex digit or '='")
			}
			if d.maxLength > 0 && len(d.data) >= d.maxLength {
				return sessions, d.fail(c, "session exceeds maximum length")
			}
			d.hi = v
			d.state = stateLo

		case stateLo:
			v, ok := hexValue(c)
			if !ok {
				return sessions, d.fail(c, "expected hex digit")
			}
			d.data = append(d.data, d.hi<<4|v)
			d.state = stateDelim

		case stateDelim:
			if c != '+' {
				return sessions, d.fail(c, "expected '+'")
			}
			d.state = stateHi

		case stateChecksum:
			d.checksum = c
			d.state = stateTerminate

		case stateTerminate:
			if c != '$' {
				return sessions, d.fail(c, "expected '$'")
			}
			sessions = append(sessions, d.finish())
			continue
		}
		d.offset++
	}

	return sessions, nil
}

func (d *Decoder) finish() *Session {
	data := d.data
	if data == nil {
		data = []byte{}
	}
	s := &Session{
		Data:     data,
		Checksum: d.checksum,
		Computed: sum8(data),
		CRC:      CRC16(data),
		Received: d.now(),
	}
	s.Valid = s.Checksum == s.Computed
	d.Reset()
	return s
}

func (d *Decoder) fail(c byte, reason string) error {
	err := &FrameError{Offset: d.offset, Got: c, Reason: reason}
	d.Reset()
	return err
}
