package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hexupload/serialcomm"
)

func main() {
	var (
		portName = flag.String("port", "/dev/ttyUSB0", "serial port name")
		baud     = flag.Int("baud", serialcomm.DefaultBaudRate, "baud rate")
		driver   = flag.String("driver", serialcomm.DriverTarm, "serial driver: tarm, bugst or term")
		maxLen   = flag.Int("max", 0, "largest session accepted in bytes, 0 for no limit")
		jsonOut  = flag.Bool("json", false, "log decoded sessions as JSON")
	)
	flag.Parse()

	if !*jsonOut {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	receiver, err := serialcomm.NewSerialReceiver(&serialcomm.SerialConfig{
		PortName:    *portName,
		BaudRate:    *baud,
		Driver:      *driver,
		ReadTimeout: 300 * time.Millisecond,
		MaxLength:   *maxLen,
		ReadCallback: func(s *serialcomm.Session) {
			ev := log.Info()
			if !s.Valid {
				ev = log.Warn()
			}
			ev.Int("bytes", len(s.Data)).
				Str("checksum", fmt.Sprintf("0x%02X", s.Checksum)).
				Str("computed", fmt.Sprintf("0x%02X", s.Computed)).
				Str("crc16", fmt.Sprintf("0x%04X", s.CRC)).
				Bool("valid", s.Valid).
				Msg("session received")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to open port")
	}

	if err := receiver.Start(); err != nil {
		log.Fatal().Err(err).Msg("unable to start receiver")
	}
	log.Info().Str("port", *portName).Msg("listening, Ctrl+C to quit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	if err := receiver.Close(); err != nil {
		log.Error().Err(err).Msg("close failed")
	}
}
