// Package store persists imported projects.
//
// Three backends implement Store: an in-memory map for tests and one-shot
// runs, SQLite (pure Go, one file) and PostgreSQL. Any of them can be wrapped
// in an LRU cache with NewCached. Open picks the backend from configuration.
package store

import (
	"bytes"
	"fmt"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
)

// ErrNotFound is returned for unknown project ids.
var ErrNotFound = core.ErrProjectNotFound

// Store is a core.Repository that holds resources until closed.
type Store interface {
	core.Repository
	Close() error
}

// separatorString and separatorRune convert the path separator to and from
// its column representation.
func separatorString(r rune) string {
	if r == 0 {
		r = core.DefaultPathSeparator
	}
	return string(r)
}

func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return core.DefaultPathSeparator
}

// encodeTree and decodeTree store a tree as its cc.json document.
func encodeTree(p *core.Project) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("project has no tree")
	}
	return export.Marshal(p)
}

func decodeTree(data []byte, sep rune) (*core.Project, error) {
	p, err := export.Decode(bytes.NewReader(data), sep)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return p, nil
}
