package upload

import "github.com/rs/zerolog"

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to the Logger interface.
// Key/value pairs are attached as fields.
func NewZerologLogger(log zerolog.Logger) Logger {
	return &zerologLogger{log: log}
}

func (l *zerologLogger) Debug(msg string, kv ...interface{}) {
	l.log.Debug().Fields(kv).Msg(msg)
}

func (l *zerologLogger) Info(msg string, kv ...interface{}) {
	l.log.Info().Fields(kv).Msg(msg)
}

func (l *zerologLogger) Error(msg string, kv ...interface{}) {
	l.log.Error().Fields(kv).Msg(msg)
}
