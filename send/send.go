package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"hexupload/binfile"
	"hexupload/serialcomm"
	"hexupload/upload"
)

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitOpen
	exitTransfer
)

// replaced in tests
var (
	openPort = serialcomm.Open
	sleep    = time.Sleep
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	settings, err := parseSettings(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		logger.Error().Err(err).Msg("invalid settings")
		return exitUsage
	}

	results, err := binfile.LoadAll(settings.Files, binfile.WithReadLimit(settings.ReadLimit))
	if err != nil {
		logger.Error().Err(err).Msg("unable to load file")
		return exitUsage
	}
	for _, r := range results {
		ev := logger.Info()
		if r.Truncated {
			ev = logger.Warn().Bool("truncated", true)
		}
		ev.Str("file", r.Image.Name).Str("format", r.Format).Int("bytes", len(r.Image.Data)).Msg("loaded")
	}

	if !settings.Quiet {
		logger.Info().Str("port", settings.Port).Int("baud", settings.Baud).Str("driver", settings.Driver).Msg("opening port")
	}
	port, err := openPort(settings.serialConfig())
	if err != nil {
		logger.Error().Err(err).Msg("unable to open port, terminating session")
		return exitOpen
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		logger.Warn().Err(err).Msg("flush failed")
	}
	if settings.wake > 0 {
		if !settings.Quiet {
			logger.Info().Dur("wait", settings.wake).Msg("waiting for the board to wake up")
		}
		sleep(settings.wake)
	}

	opts := []upload.Option{
		upload.WithLimited(settings.Limited),
		upload.WithPacing(settings.pacing),
		upload.WithLogger(upload.NewZerologLogger(logger.Level(zerolog.InfoLevel))),
	}
	if !settings.Quiet {
		opts = append(opts, upload.WithEventSink(diagnostics(logger)))
	}

	res, err := upload.New(port, opts...).Upload(binfile.Images(results))
	if err != nil {
		logger.Error().Err(err).Msg("transfer aborted, the whole session must be sent again")
		return exitTransfer
	}

	logger.Info().
		Uint("bytes", res.BytesSent).
		Str("checksum", fmt.Sprintf("0x%02X", res.Checksum)).
		Str("crc16", fmt.Sprintf("0x%04X", res.CRC)).
		Bool("truncated", res.Truncated).
		Msg("completed")
	return exitOK
}

// diagnostics prints the session as it is sent, one line per marker and per
// data byte.
func diagnostics(logger zerolog.Logger) upload.EventSink {
	return func(e upload.Event) {
		switch e.Kind {
		case upload.EventStart:
			logger.Info().Msg("initializing process with @")
		case upload.EventImage:
			logger.Info().Str("file", e.Name).Msg("sending data")
		case upload.EventByte:
			logger.Info().Msg(fmt.Sprintf("%04X: %s", e.Address&0xFFFF, e.Hex()))
		case upload.EventTruncated:
			logger.Warn().Uint("address", e.Address).Msg("limited target, remaining data skipped")
		case upload.EventChecksumDelimiter:
			logger.Info().Msg("sending checksum")
		case upload.EventChecksum:
			logger.Info().Str("checksum", fmt.Sprintf("0x%02X", e.Value)).Msg("checksum sent")
		case upload.EventTerminate:
			logger.Info().Msg("terminating session with $")
		}
	}
}
