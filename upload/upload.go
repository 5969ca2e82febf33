package upload

import (
	"io"

	"github.com/sigurn/crc16"
)

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// Port is the write side of the serial link. The uploader owns the port for
// the whole session and never reads from it.
type Port interface {
	Write(p []byte) (int, error)
}

// Image is one source byte sequence of a session.
type Image struct {
	Name string
	Data []byte
}

// Result summarises a completed session.
type Result struct {
	// BytesSent is the number of data bytes transmitted, after truncation.
	BytesSent uint

	// Checksum is the value sent after '='.
	Checksum uint8

	// CRC is a CRC-16/MODBUS digest of the transmitted data bytes. It is
	// never sent; it lets an operator compare a session against a file.
	CRC uint16

	// Truncated is set when the limited-target cap dropped data bytes.
	Truncated bool
}

// Uploader drives a Port through the upload protocol.
//
// An Uploader is not safe for concurrent use: sessions on the same port must
// never interleave.
type Uploader struct {
	port   Port
	config Config
}

// session is the state of one upload. It lives for a single call to Upload.
type session struct {
	address  uint
	checksum uint8
	crc      crc16.Hash16
	written  int
}

// New creates a new Uploader writing to port.
//
// Example:
//
//	up := upload.New(port,
//	    upload.WithLimited(true),
//	    upload.WithEventSink(sink),
//	)
func New(port Port, opts ...Option) *Uploader {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Uploader{
		port:   port,
		config: cfg,
	}
}

// RunSession uploads images to port in one session. In limited mode at most
// DefaultLimit data bytes are sent in total.
func RunSession(images [][]byte, limited bool, port Port, opts ...Option) (Result, error) {
	imgs := make([]Image, len(images))
	for i, data := range images {
		imgs[i] = Image{Data: data}
	}

	opts = append(opts, WithLimited(limited))
	return New(port, opts...).Upload(imgs)
}

// Upload performs a complete session:
//  1. '@'
//  2. for every byte of every image: hi nibble, lo nibble, '+'
//  3. '=' and the raw checksum byte
//  4. '$'
//
// Any write failure aborts the session and returns a *WriteError. Nothing is
// retried and the footer is not forced out.
func (u *Uploader) Upload(images []Image) (Result, error) {
	s := &session{crc: crc16.New(crcTable)}
	truncated := false

	u.logDebug("starting session",
		"images", len(images),
		"limited", u.config.Limited,
		"pacing", u.config.Pacing.String(),
	)

	if err := u.send(s, StageStart, StartMarker); err != nil {
		return Result{}, err
	}
	u.emit(Event{Kind: EventStart, Image: -1})

images:
	for i, img := range images {
		// a capped session never announces the images it will not send
		if u.capped(s) {
			truncated = remaining(images[i:]) > 0
			break
		}
		u.emit(Event{Kind: EventImage, Image: i, Name: img.Name, Address: s.address})

		for _, b := range img.Data {
			if u.capped(s) {
				truncated = true
				break images
			}

			if err := u.sendByte(s, b); err != nil {
				return Result{}, err
			}
			u.emit(Event{Kind: EventByte, Image: i, Address: s.address - 1, Value: b})
		}
	}

	if truncated {
		u.logInfo("limited target, data truncated", "limit", u.config.Limit)
		u.emit(Event{Kind: EventTruncated, Image: -1, Address: s.address})
	}

	if err := u.send(s, StageDelimiter, ChecksumDelimiter); err != nil {
		return Result{}, err
	}
	u.emit(Event{Kind: EventChecksumDelimiter, Image: -1, Address: s.address})

	if err := u.send(s, StageChecksum, s.checksum); err != nil {
		return Result{}, err
	}
	u.emit(Event{Kind: EventChecksum, Image: -1, Address: s.address, Value: s.checksum})

	if err := u.send(s, StageTerminate, TerminateMarker); err != nil {
		return Result{}, err
	}
	u.emit(Event{Kind: EventTerminate, Image: -1, Address: s.address})

	res := Result{
		BytesSent: s.address,
		Checksum:  s.checksum,
		CRC:       s.crc.Sum16(),
		Truncated: truncated,
	}

	u.logInfo("session complete",
		"bytes", res.BytesSent,
		"checksum", res.Checksum,
		"characters", s.written,
	)

	return res, nil
}

// capped reports whether a limited target has received all it accepts.
func (u *Uploader) capped(s *session) bool {
	return u.config.Limited && s.address >= u.config.Limit
}

func remaining(images []Image) int {
	n := 0
	for _, img := range images {
		n += len(img.Data)
	}
	return n
}

// sendByte writes one data byte as a hex triple and folds it into the
// checksum once the triple is complete.
func (u *Uploader) sendByte(s *session, b byte) error {
	h := EncodeHex(b)
	for _, c := range [3]byte{h[0], h[1], ByteDelimiter} {
		if err := u.send(s, StageData, c); err != nil {
			return err
		}
	}

	s.checksum += b
	_, _ = s.crc.Write([]byte{b})
	s.address++
	return nil
}

// send writes a single character and then waits out the pacing delay.
func (u *Uploader) send(s *session, stage Stage, c byte) error {
	n, err := u.port.Write([]byte{c})
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		u.logError("write failed",
			"stage", string(stage),
			"address", s.address,
			"error", err.Error(),
		)
		return &WriteError{
			Stage:   stage,
			Address: s.address,
			Written: s.written,
			Err:     err,
		}
	}
	s.written++

	if u.config.Pacing > 0 {
		u.config.Sleep(u.config.Pacing)
	}
	return nil
}

// emit calls the event sink if configured.
func (u *Uploader) emit(e Event) {
	if u.config.Events != nil {
		u.config.Events(e)
	}
}

// logDebug logs a debug message if a logger is configured.
func (u *Uploader) logDebug(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (u *Uploader) logInfo(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (u *Uploader) logError(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Error(msg, keysAndValues...)
	}
}
