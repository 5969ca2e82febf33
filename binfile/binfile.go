// Package binfile loads program images for upload.
//
// Raw binary files are read as-is, up to a read limit. Intel HEX files are
// flattened into a memory image starting at address 0, since the loader always
// places data from $0000.
package binfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcinbor85/gohex"
	"golang.org/x/exp/slices"

	"hexupload/upload"
)

// DefaultReadLimit is the largest raw image read from one file.
const DefaultReadLimit = 8192

// MaxHexImage bounds the flattened size of an Intel HEX image (64K address space).
const MaxHexImage = 0x10000

var hexExtensions = []string{".hex", ".ihx", ".ihex"}

type loadConfig struct {
	readLimit int
	format    string
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithReadLimit caps how many bytes of a raw file are read. Zero reads the
// whole file.
func WithReadLimit(n int) LoadOption {
	return func(c *loadConfig) {
		if n >= 0 {
			c.readLimit = n
		}
	}
}

// WithFormat forces the file format ("bin" or "hex") instead of guessing it
// from the extension.
func WithFormat(format string) LoadOption {
	return func(c *loadConfig) {
		c.format = format
	}
}

// LoadResult is a loaded image and how it was read.
type LoadResult struct {
	Image upload.Image

	// Truncated is set when a raw file was longer than the read limit.
	Truncated bool

	// Format is "bin" or "hex".
	Format string
}

// Load reads one image from path.
func Load(path string, opts ...LoadOption) (*LoadResult, error) {
	cfg := loadConfig{readLimit: DefaultReadLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	format := cfg.format
	if format == "" {
		format = "bin"
		if slices.Contains(hexExtensions, strings.ToLower(filepath.Ext(path))) {
			format = "hex"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &LoadResult{Format: format}
	res.Image.Name = filepath.Base(path)

	switch format {
	case "bin":
		res.Image.Data, res.Truncated, err = readRaw(f, cfg.readLimit)
	case "hex":
		res.Image.Data, err = readIntelHex(f)
	default:
		return nil, fmt.Errorf("%s: unknown format %q", path, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return res, nil
}

// LoadAll loads every path in order. The first failure aborts.
func LoadAll(paths []string, opts ...LoadOption) ([]*LoadResult, error) {
	results := make([]*LoadResult, 0, len(paths))
	for _, p := range paths {
		res, err := Load(p, opts...)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Images returns the upload images of results, keeping their order.
func Images(results []*LoadResult) []upload.Image {
	images := make([]upload.Image, len(results))
	for i, r := range results {
		images[i] = r.Image
	}
	return images
}

func readRaw(r io.Reader, limit int) ([]byte, bool, error) {
	if limit == 0 {
		data, err := io.ReadAll(r)
		return data, false, err
	}

	// one extra byte tells us whether the file was cut short
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, false, err
	}
	if len(data) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

func readIntelHex(r io.Reader) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}

	segments := mem.GetDataSegments()
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Address < segments[j].Address
	})

	var end uint32
	for _, seg := range segments {
		if e := seg.Address + uint32(len(seg.Data)); e > end {
			end = e
		}
	}
	if end > MaxHexImage {
		return nil, fmt.Errorf("image ends at 0x%X, beyond the 64K address space", end)
	}

	data := make([]byte, end)
	for _, seg := range segments {
		copy(data[seg.Address:], seg.Data)
	}
	return data, nil
}
