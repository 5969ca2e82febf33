// Package upload implements the sender side of the hex upload protocol used by
// the Arduino COSMAC VIP / Studio II loader.
//
// # Wire Format
//
// A session is written one character at a time:
//
//	Session := '@' Body '=' <checksum byte> '$'
//	Body    := (HiNibble LoNibble '+')*
//
// Each data byte travels as two uppercase hex characters followed by '+'.
// The checksum is the 8-bit sum of every transmitted data byte and is the only
// raw binary byte in the stream.
//
// # Pacing
//
// The loader polls its UART from a slow loop, so every write (markers included)
// is followed by a fixed pause. The default is 50 ms per character.
//
// # Basic Usage
//
//	port, err := serialcomm.Open(&serialcomm.SerialConfig{PortName: "/dev/ttyUSB0", BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	res, err := upload.RunSession([][]byte{rom}, false, port)
//
// There is no acknowledgement and no retry. A failed session has to be sent
// again from the start marker.
package upload
