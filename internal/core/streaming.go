package core

// streaming.go normalizes raw input before it reaches the CSV tokenizer.
//
// Spreadsheet exports often start with a byte order mark and occasionally
// contain bytes that are not UTF-8 (Windows-1252 quotes, Latin-1 accents).
// NewInputReader handles both on the fly, without buffering the whole file:
//
//   - a UTF-8 BOM is dropped; a UTF-16 BOM switches to UTF-16 decoding
//   - invalid UTF-8 sequences become U+FFFD
//
// CountingReader tracks bytes consumed for import statistics.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewInputReader wraps r with BOM detection and UTF-8 sanitization.
func NewInputReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}
