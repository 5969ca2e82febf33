// serialcomm/receiver.go
package serialcomm

import (
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// idleTimeout discards a partial session when the sender goes quiet.
const idleTimeout = 5 * time.Second

type serialReceiverImpl struct {
	port    Port
	config  *SerialConfig
	decoder *Decoder
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool

	// set by the read loop before doneCh is closed
	closeErr error
}

// NewSerialReceiver opens the configured port for decoding upload sessions.
// Used for loopback checks of the uploader over a null-modem cable.
func NewSerialReceiver(cfg *SerialConfig) (SerialReceiver, error) {
	if cfg != nil && cfg.ReadTimeout <= 0 {
		c := *cfg
		c.ReadTimeout = 500 * time.Millisecond
		cfg = &c
	}
	port, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return newReceiver(port, cfg), nil
}

func newReceiver(port Port, cfg *SerialConfig) *serialReceiverImpl {
	return &serialReceiverImpl{
		port:    port,
		config:  cfg,
		decoder: NewDecoder(cfg.MaxLength),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (s *serialReceiverImpl) Start() error {
	if s.started {
		return errors.New("receiver already started")
	}

	var (
		data         = make([]byte, 1024)
		lastDataTime = time.Now()
	)

	go func() {
		defer close(s.doneCh)
		defer func() { s.closeErr = s.port.Close() }()
		log.Debug().Str("port", s.config.PortName).Msg("receiver started")

		for {
			select {
			case <-s.stopCh:
				log.Debug().Str("port", s.config.PortName).Msg("receiver stopped")
				return
			default:
			}

			n, err := s.port.Read(data)
			if err != nil && !errors.Is(err, io.EOF) {
				log.Error().Err(err).Str("port", s.config.PortName).Msg("read failed")
				time.Sleep(10 * time.Millisecond)
				continue
			}
			if n == 0 {
				if time.Since(lastDataTime) > idleTimeout && s.decoder.Pending() {
					log.Warn().Str("port", s.config.PortName).Msg("receive timeout, discarding partial session")
					s.decoder.Reset()
				}
				continue
			}

			lastDataTime = time.Now()
			sessions, err := s.decoder.Feed(data[:n])
			for _, sess := range sessions {
				if s.config.ReadCallback != nil {
					s.config.ReadCallback(sess)
				}
			}
			if err != nil {
				log.Warn().Err(err).Str("port", s.config.PortName).Msg("discarding malformed session")
			}
		}
	}()

	s.started = true
	return nil
}

// Close stops the read loop and closes the port.
func (s *serialReceiverImpl) Close() error {
	if !s.started {
		return s.port.Close()
	}
	close(s.stopCh)
	<-s.doneCh
	s.started = false
	return s.closeErr
}
