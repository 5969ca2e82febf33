package upload

import "time"

// Protocol defaults.
const (
	// DefaultPacing is the pause after every single-character write.
	DefaultPacing = 50 * time.Millisecond

	// DefaultLimit is the number of data bytes a limited target (Studio II) accepts.
	DefaultLimit = 1024
)

// Config holds the uploader configuration.
type Config struct {
	// Limited stops the body once Limit bytes have been sent, across all images.
	Limited bool

	// Limit is the byte cap applied when Limited is set.
	Limit uint

	// Pacing is the pause after every write.
	Pacing time.Duration

	// Sleep performs the pacing pause. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// Events receives one call per marker and one per data byte (optional)
	Events EventSink

	// Logger is used for logging operations (optional)
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		Limit:  DefaultLimit,
		Pacing: DefaultPacing,
		Sleep:  time.Sleep,
	}
}

// Option is a functional option for configuring the Uploader.
type Option func(*Config)

// WithLimited switches between limited-target and full mode.
func WithLimited(limited bool) Option {
	return func(c *Config) {
		c.Limited = limited
	}
}

// WithLimit changes the limited-target byte cap. Zero is ignored.
func WithLimit(limit uint) Option {
	return func(c *Config) {
		if limit > 0 {
			c.Limit = limit
		}
	}
}

// WithPacing sets the pause after each write. Negative values are ignored.
//
// Example:
//
//	up := upload.New(port, upload.WithPacing(20*time.Millisecond))
func WithPacing(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.Pacing = d
		}
	}
}

// WithSleeper replaces time.Sleep for the pacing pause.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Config) {
		if sleep != nil {
			c.Sleep = sleep
		}
	}
}

// WithEventSink sets a callback that observes every write of the session.
//
// Example:
//
//	up := upload.New(port,
//	    upload.WithEventSink(func(e upload.Event) {
//	        if e.Kind == upload.EventByte {
//	            fmt.Printf("%04X: %s\n", e.Address, e.Hex())
//	        }
//	    }),
//	)
func WithEventSink(sink EventSink) Option {
	return func(c *Config) {
		c.Events = sink
	}
}

// WithLogger sets a logger for the uploader.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
