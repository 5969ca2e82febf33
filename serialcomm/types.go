package serialcomm

import "time"

// Session is one upload decoded from the wire.
type Session struct {
	Data     []byte    `json:"data"`     // base64-encoded
	Checksum byte      `json:"checksum"` // as sent after '='
	Computed byte      `json:"computed"` // 8-bit sum of Data
	Valid    bool      `json:"valid"`
	CRC      uint16    `json:"crc"` // CRC-16/MODBUS of Data
	Received time.Time `json:"received"`
}
