package core

import (
	"fmt"
	"strings"
)

// DefaultPathColumn is the header name that marks the path column.
const DefaultPathColumn = "path"

// ColumnRole says what a header column is used for.
type ColumnRole int

const (
	RoleIgnored ColumnRole = iota
	RolePath
	RoleAttribute
)

func (r ColumnRole) String() string {
	switch r {
	case RolePath:
		return "path"
	case RoleAttribute:
		return "attribute"
	default:
		return "ignored"
	}
}

// Column is one resolved header cell.
type Column struct {
	Index int
	Name  string // cleaned and substituted header text
	Role  ColumnRole
}

// Header is the immutable column layout read from the first row.
type Header struct {
	Columns   []Column
	PathIndex int
	Warnings  []string // ignored columns, in column order
}

// Width is the number of fields every data row must have.
func (h Header) Width() int {
	return len(h.Columns)
}

// PathName returns the header text of the path column.
func (h Header) PathName() string {
	return h.Columns[h.PathIndex].Name
}

// AttributeNames returns the attribute columns left to right.
func (h Header) AttributeNames() []string {
	var names []string
	for _, c := range h.Columns {
		if c.Role == RoleAttribute {
			names = append(names, c.Name)
		}
	}
	return names
}

// ResolveHeader assigns roles to the raw header cells.
//
// Every cell is cleaned and then rewritten by subs. The first cell equal to
// pathColumn (case-insensitive) becomes the path column; the remaining named,
// non-duplicate cells become attributes. Empty or duplicate names are ignored
// and listed in Header.Warnings. Without a path column the result is
// ErrInvalidHeader.
func ResolveHeader(raw []string, subs Substitutions, pathColumn string) (Header, error) {
	if pathColumn == "" {
		pathColumn = DefaultPathColumn
	}
	if len(raw) == 0 {
		return Header{}, invalidHeaderErr("header row has no columns")
	}

	h := Header{
		Columns:   make([]Column, len(raw)),
		PathIndex: -1,
	}
	seen := make(map[string]int, len(raw))

	for i, cell := range raw {
		name := subs.Apply(CleanCell(cell))
		col := Column{Index: i, Name: name, Role: RoleIgnored}

		switch {
		case name == "":
			h.Warnings = append(h.Warnings, fmt.Sprintf("column %d has an empty header", i+1))
		case strings.EqualFold(name, pathColumn) && h.PathIndex < 0:
			col.Role = RolePath
			h.PathIndex = i
			seen[name] = i
		default:
			if first, dup := seen[name]; dup || strings.EqualFold(name, pathColumn) {
				if !dup {
					first = h.PathIndex
				}
				h.Warnings = append(h.Warnings,
					fmt.Sprintf("column %d duplicates header %q of column %d", i+1, name, first+1))
				break
			}
			col.Role = RoleAttribute
			seen[name] = i
		}

		h.Columns[i] = col
	}

	if h.PathIndex < 0 {
		return Header{}, invalidHeaderErr("no %q column in header %q", pathColumn, strings.Join(raw, ","))
	}
	return h, nil
}
