package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewInputReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("path,loc")...),
			expected: "path,loc",
		},
		{
			name:     "file without BOM",
			input:    []byte("path,loc"),
			expected: "path,loc",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "valid UTF-8 with multibyte",
			input:    []byte("src/café.go,3"),
			expected: "src/café.go,3",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte("hello\x80world"),
			expected: "hello�world",
		},
		{
			name:     "latin-1 accent at end replaced",
			input:    []byte("caf\xe9"),
			expected: "caf�",
		},
		{
			name:     "BOM and invalid byte",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("he\x80lo")...),
			expected: "he�lo",
		},
		{
			name:     "UTF-16LE with BOM",
			input:    []byte{0xFF, 0xFE, 'p', 0x00, 'a', 0x00},
			expected: "pa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewInputReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 100)
	totalRead := 0
	for {
		n, err := reader.Read(buf)
		totalRead += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if totalRead != len(input) {
		t.Errorf("total read = %d, want %d", totalRead, len(input))
	}
	if reader.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
	}
	if reader.Progress() != 100 {
		t.Errorf("Progress = %d, want 100", reader.Progress())
	}

	unknown := NewCountingReader(strings.NewReader("abc"), 0)
	_, _ = io.ReadAll(unknown)
	if unknown.Progress() != 0 {
		t.Errorf("Progress with unknown total = %d, want 0", unknown.Progress())
	}
}
