package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ingestion pipeline.
var (
	// ErrInvalidHeader means the header row has no path column. Fatal to an ingestion.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrEmptyInput means the stream ended before a header row was read.
	ErrEmptyInput = errors.New("empty file")

	// ErrRowShape matches every *RowShapeError via errors.Is.
	ErrRowShape = errors.New("row shape error")

	// ErrUnknownProfile is returned when a substitution profile is not registered.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrProjectNotFound is returned by repositories for a missing project.
	ErrProjectNotFound = errors.New("project not found")

	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when an import request carries no input.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidRequest marks a malformed option supplied by a caller.
	ErrInvalidRequest = errors.New("invalid request")
)

// Row rejection reasons.
const (
	ReasonFieldCount = "field count"
	ReasonEmptyPath  = "empty path"
	ReasonDuplicate  = "duplicate"
	ReasonMalformed  = "malformed record"
)

// RowShapeError describes a row that cannot become a file node.
// It is recovered locally: the row is skipped and ingestion continues.
type RowShapeError struct {
	Line   int // 1-based line in the input, 0 if unknown
	Reason string
	Detail string
}

func (e *RowShapeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *RowShapeError) Is(target error) bool {
	return target == ErrRowShape
}

func rowShapeErr(reason, format string, args ...any) *RowShapeError {
	return &RowShapeError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func invalidHeaderErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidHeader, fmt.Sprintf(format, args...))
}
