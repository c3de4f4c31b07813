package core

import "strings"

// DecodeRow splits the path cell of raw into folders and a file name and
// types every attribute cell.
//
// The row must have exactly h.Width() fields. Empty path segments are dropped,
// so "a//b.c" and "/a/b.c" both decode to folder "a" and file "b.c"; a path
// with no non-empty segment is a RowShapeError.
func DecodeRow(raw []string, h Header, sep rune) (DecodedRow, error) {
	if len(raw) != h.Width() {
		return DecodedRow{}, rowShapeErr(ReasonFieldCount,
			"expected %d fields, got %d: %s", h.Width(), len(raw), strings.Join(raw, ","))
	}

	pathValue := raw[h.PathIndex]
	segments := splitPath(pathValue, sep)
	if len(segments) == 0 {
		if strings.TrimSpace(pathValue) == "" {
			return DecodedRow{}, rowShapeErr(ReasonEmptyPath,
				"row without %s: %s", h.PathName(), strings.Join(raw, ","))
		}
		return DecodedRow{}, rowShapeErr(ReasonEmptyPath,
			"path %q has no segments", pathValue)
	}

	attrs := make(Attributes, len(h.Columns)-1)
	for _, col := range h.Columns {
		if col.Role != RoleAttribute {
			continue
		}
		attrs[col.Name] = ParseValue(raw[col.Index])
	}

	last := len(segments) - 1
	return DecodedRow{
		FolderPath: segments[:last],
		FileName:   segments[last],
		Attributes: attrs,
	}, nil
}

// splitPath returns the non-empty segments of p.
func splitPath(p string, sep rune) []string {
	fields := strings.FieldsFunc(p, func(r rune) bool { return r == sep })
	segments := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		segments = append(segments, f)
	}
	return segments
}
