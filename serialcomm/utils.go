// serialcomm/utils.go
package serialcomm

import (
	"github.com/sigurn/crc16"
)

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC16 returns the CRC-16/MODBUS digest of data. It is the same digest the
// uploader reports for a session, so the two can be compared.
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

func sum8(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
