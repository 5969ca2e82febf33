package upload

const hexDigits = "0123456789ABCDEF"

// Protocol control characters.
const (
	StartMarker       = '@'
	ByteDelimiter     = '+'
	ChecksumDelimiter = '='
	TerminateMarker   = '$'
)

// EncodeHex returns the two uppercase hex characters of b, high nibble first.
func EncodeHex(b byte) [2]byte {
	return [2]byte{hexDigits[b>>4], hexDigits[b&0x0F]}
}

// Checksum returns the 8-bit sum of data, the value sent after '='.
func Checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}
