package datareader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// LoadDump reads a raw memory dump. Files ending in .gz, .zst or .xz are decompressed.
func LoadDump(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bad gzip dump %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bad zstd dump %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bad xz dump %s: %w", path, err)
		}
		r = xr
	default:
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	return data, nil
}
