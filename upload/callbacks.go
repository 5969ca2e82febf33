package upload

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventStart follows the '@' start marker.
	EventStart EventKind = iota

	// EventImage announces that the bytes of the next image are about to be sent.
	EventImage

	// EventByte follows a complete hex triple (hi, lo, '+').
	EventByte

	// EventTruncated reports that the limited-target cap stopped the body.
	EventTruncated

	// EventChecksumDelimiter follows the '=' marker.
	EventChecksumDelimiter

	// EventChecksum follows the raw checksum byte.
	EventChecksum

	// EventTerminate follows the '$' terminate marker.
	EventTerminate
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventImage:
		return "image"
	case EventByte:
		return "byte"
	case EventTruncated:
		return "truncated"
	case EventChecksumDelimiter:
		return "checksum-delimiter"
	case EventChecksum:
		return "checksum"
	case EventTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Event describes a step of an upload session.
type Event struct {
	Kind EventKind

	// Image is the index of the image being sent. -1 outside the body.
	Image int

	// Name of the image, set for EventImage.
	Name string

	// Address is the session address counter at the time of the event. For
	// EventByte it is the address of the byte just sent.
	Address uint

	// Value is the data byte for EventByte and the checksum for EventChecksum.
	Value byte
}

// Hex returns the on-wire characters of Value.
func (e Event) Hex() string {
	h := EncodeHex(e.Value)
	return string(h[:])
}

// EventSink observes a session. It is called synchronously between writes so
// it should return quickly.
type EventSink func(Event)

// Logger is an optional logging interface that can be provided to the uploader.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
