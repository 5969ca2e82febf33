package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexupload/binfile"
	"hexupload/serialcomm"
)

// MockPort records writes and can fail after a number of them
type MockPort struct {
	buf     bytes.Buffer
	failAt  int
	flushed bool
	closed  bool
}

func (m *MockPort) Read(p []byte) (int, error) { return 0, nil }

func (m *MockPort) Write(p []byte) (int, error) {
	if m.failAt > 0 && m.buf.Len() >= m.failAt {
		return 0, errors.New("cable pulled")
	}
	return m.buf.Write(p)
}

func (m *MockPort) Flush() error {
	m.flushed = true
	return nil
}

func (m *MockPort) Close() error {
	m.closed = true
	return nil
}

func withMockPort(t *testing.T, port *MockPort, openErr error) *serialcomm.SerialConfig {
	t.Helper()
	var opened serialcomm.SerialConfig

	origOpen, origSleep := openPort, sleep
	openPort = func(cfg *serialcomm.SerialConfig) (serialcomm.Port, error) {
		opened = *cfg
		if openErr != nil {
			return nil, openErr
		}
		return port, nil
	}
	sleep = func(time.Duration) {}
	t.Cleanup(func() { openPort, sleep = origOpen, origSleep })

	return &opened
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunSendsSession(t *testing.T) {
	dir := t.TempDir()
	rom := writeFile(t, dir, "rom.bin", []byte{0x12, 0x34})
	game := writeFile(t, dir, "game.bin", []byte{0xFF})

	port := &MockPort{}
	opened := withMockPort(t, port, nil)

	var out bytes.Buffer
	code := run([]string{"-port", "/dev/ttyUSB1", "-baud", "9600", "-pacing", "0s", rom, game}, &out)
	require.Equal(t, exitOK, code, out.String())

	assert.Equal(t, "@12+34+FF+="+string([]byte{0x45})+"$", port.buf.String())
	assert.Equal(t, "/dev/ttyUSB1", opened.PortName)
	assert.Equal(t, 9600, opened.BaudRate)
	assert.True(t, port.flushed)
	assert.True(t, port.closed)
	assert.Contains(t, out.String(), "0001: 34")
	assert.Contains(t, out.String(), "completed")
}

func TestRunLimited(t *testing.T) {
	dir := t.TempDir()
	rom := writeFile(t, dir, "studio2.bin", bytes.Repeat([]byte{0x01}, 2048))

	port := &MockPort{}
	withMockPort(t, port, nil)

	var out bytes.Buffer
	code := run([]string{"-studio2", "-quiet", "-pacing", "0s", rom}, &out)
	require.Equal(t, exitOK, code, out.String())

	// 1024 triples plus '@' and the three footer characters
	assert.Equal(t, 1+3*1024+3, port.buf.Len())
	assert.Equal(t, byte(0x00), port.buf.Bytes()[port.buf.Len()-2])
	assert.NotContains(t, out.String(), "0000: 01")
}

func TestRunOpenError(t *testing.T) {
	rom := writeFile(t, t.TempDir(), "rom.bin", []byte{1})
	withMockPort(t, nil, &serialcomm.OpenError{PortName: "COM9", Driver: "tarm", Err: errors.New("busy")})

	var out bytes.Buffer
	code := run([]string{"-port", "COM9", rom}, &out)
	assert.Equal(t, exitOpen, code)
	assert.Contains(t, out.String(), "busy")
}

func TestRunTransferError(t *testing.T) {
	rom := writeFile(t, t.TempDir(), "rom.bin", []byte{1, 2, 3})
	port := &MockPort{failAt: 4}
	withMockPort(t, port, nil)

	var out bytes.Buffer
	code := run([]string{"-quiet", "-pacing", "0s", rom}, &out)
	assert.Equal(t, exitTransfer, code)
	assert.True(t, port.closed)
	assert.Equal(t, "@01+", port.buf.String())
}

func TestRunUsageErrors(t *testing.T) {
	withMockPort(t, &MockPort{}, nil)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no files", args: []string{"-port", "COM1"}},
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "gone.bin")}},
		{name: "bad baud", args: []string{"-baud", "1000", "x.bin"}},
		{name: "bad pacing", args: []string{"-pacing", "fast", "x.bin"}},
		{name: "unknown flag", args: []string{"-colour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, exitUsage, run(tt.args, &out))
		})
	}
}

func TestParseSettingsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "vip.json", []byte(`{
		"port": "/dev/ttyACM0",
		"baud": 57600,
		"driver": "bugst",
		"limited": true,
		"pacing": "20ms",
		"files": ["a.bin", "b.bin"]
	}`))

	s, err := parseSettings([]string{"-config", cfg, "-baud", "9600"})
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", s.Port)
	assert.Equal(t, 9600, s.Baud)
	assert.Equal(t, "bugst", s.Driver)
	assert.True(t, s.Limited)
	assert.Equal(t, 20*time.Millisecond, s.pacing)
	assert.Equal(t, 3*time.Second, s.wake)
	assert.Equal(t, []string{"a.bin", "b.bin"}, s.Files)

	s, err = parseSettings([]string{"-config", cfg, "c.bin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.bin"}, s.Files)

	_, err = parseSettings([]string{"-config", filepath.Join(dir, "none.json"), "c.bin"})
	assert.Error(t, err)
}

func TestParseSettingsReadLimitFromFile(t *testing.T) {
	tests := []struct {
		name string
		json string
		args []string
		want int
	}{
		{name: "zero means no limit", json: `{"readLimit": 0, "files": ["a.bin"]}`, want: 0},
		{name: "explicit value", json: `{"readLimit": 4096, "files": ["a.bin"]}`, want: 4096},
		{name: "missing keeps default", json: `{"files": ["a.bin"]}`, want: binfile.DefaultReadLimit},
		{name: "flag wins", json: `{"readLimit": 0, "files": ["a.bin"]}`, args: []string{"-read-limit", "100"}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeFile(t, t.TempDir(), "vip.json", []byte(tt.json))

			s, err := parseSettings(append([]string{"-config", cfg}, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.ReadLimit)
		})
	}
}
