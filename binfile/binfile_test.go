package binfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadRaw(t *testing.T) {
	data := []byte{0x90, 0xB1, 0xB2, 0xB3, 0xB4, 0xF8, 0x2D, 0xA3}
	path := writeFile(t, "chip8.bin", data)

	res, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chip8.bin", res.Image.Name)
	assert.Equal(t, data, res.Image.Data)
	assert.Equal(t, "bin", res.Format)
	assert.False(t, res.Truncated)
}

func TestLoadRawReadLimit(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, DefaultReadLimit+100)
	path := writeFile(t, "big.bin", data)

	tests := []struct {
		name          string
		opts          []LoadOption
		wantLen       int
		wantTruncated bool
	}{
		{name: "default limit", opts: nil, wantLen: DefaultReadLimit, wantTruncated: true},
		{name: "unlimited", opts: []LoadOption{WithReadLimit(0)}, wantLen: len(data)},
		{name: "small limit", opts: []LoadOption{WithReadLimit(16)}, wantLen: 16, wantTruncated: true},
		{name: "exact limit", opts: []LoadOption{WithReadLimit(len(data))}, wantLen: len(data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Load(path, tt.opts...)
			require.NoError(t, err)
			assert.Len(t, res.Image.Data, tt.wantLen)
			assert.Equal(t, tt.wantTruncated, res.Truncated)
		})
	}
}

func TestLoadIntelHex(t *testing.T) {
	hex := ":0300000002000AF1\n" +
		":02000500AABB94\n" +
		":00000001FF\n"
	path := writeFile(t, "monitor.HEX", []byte(hex))

	res, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hex", res.Format)
	assert.Equal(t, []byte{0x02, 0x00, 0x0A, 0x00, 0x00, 0xAA, 0xBB}, res.Image.Data)
}

func TestLoadForcedFormat(t *testing.T) {
	path := writeFile(t, "rom.dat", []byte(":0100000042BD\n:00000001FF\n"))

	res, err := Load(path, WithFormat("hex"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42}, res.Image.Data)

	res, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bin", res.Format)
	assert.Equal(t, byte(':'), res.Image.Data[0])

	_, err = Load(path, WithFormat("srec"))
	assert.ErrorContains(t, err, "unknown format")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, "bad.hex", []byte(":0300000002000AFF\n:00000001FF\n"))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hex")
}

func TestLoadAll(t *testing.T) {
	a := writeFile(t, "a.bin", []byte{1, 2})
	b := writeFile(t, "b.bin", []byte{3})

	results, err := LoadAll([]string{a, b})
	require.NoError(t, err)

	images := Images(results)
	require.Len(t, images, 2)
	assert.Equal(t, "a.bin", images[0].Name)
	assert.Equal(t, []byte{3}, images[1].Data)

	_, err = LoadAll([]string{a, filepath.Join(t.TempDir(), "nope.bin")})
	assert.Error(t, err)
}
