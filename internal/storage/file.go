package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// File is the default persistent tier: one file per key in a flat directory.
// Keys are made path-safe by replacing "/" with "_" and suffixed ".json"
// since every cached value is a JSON document.
type File struct {
	baseDir  string
	compress bool
}

// NewFile creates the file tier rooted at baseDir, creating it if needed.
// With compress set, values are gzipped on disk; reads detect the gzip
// magic so a cache written without compression stays readable.
func NewFile(baseDir string, compress bool) (*File, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &File{baseDir: baseDir, compress: compress}, nil
}

func (f *File) path(key string) string {
	safe := strings.ReplaceAll(key, "/", "_")
	return filepath.Join(f.baseDir, safe+".json")
}

// Get implements Engine.
func (f *File) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return nil, false
	}
	if isGzip(data) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, false
		}
		defer zr.Close()
		plain, err := io.ReadAll(zr)
		if err != nil {
			return nil, false
		}
		return plain, true
	}
	return data, true
}

// Put implements Engine.
func (f *File) Put(key string, value []byte) error {
	if f.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(value); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		value = buf.Bytes()
	}
	return os.WriteFile(f.path(key), value, 0644)
}

func isGzip(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b
}
