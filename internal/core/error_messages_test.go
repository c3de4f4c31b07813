package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "wrapped invalid header",
			err:      fmt.Errorf("import: %w", invalidHeaderErr("no path")),
			wantCode: "HDR001",
		},
		{
			name:     "empty input",
			err:      ErrEmptyInput,
			wantCode: "HDR002",
		},
		{
			name:     "row shape error",
			err:      rowShapeErr(ReasonEmptyPath, "row without path"),
			wantCode: "ROW001",
		},
		{
			name:     "limiter saturated",
			err:      fmt.Errorf("acquire: %w", ErrTooManyImports),
			wantCode: "IMP001",
		},
		{
			name:     "unknown profile",
			err:      fmt.Errorf("%w: %q", ErrUnknownProfile, "nope"),
			wantCode: "IMP002",
		},
		{
			name:     "context canceled",
			err:      fmt.Errorf("ingest: %w", context.Canceled),
			wantCode: "IMP003",
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantCode: "IMP004",
		},
		{
			name:     "missing project",
			err:      fmt.Errorf("get 42: %w", ErrProjectNotFound),
			wantCode: "STO001",
		},
		{
			name:     "text pattern connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode: "STO002",
		},
		{
			name:     "text pattern jsonpath",
			err:      errors.New("invalid JSONPath \"$[\": parse error"),
			wantCode: "QRY001",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("FILE TOO LARGE"),
			wantCode: "FILE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyInput)

	expected := "The file is empty (Code: HDR002). Upload a CSV file with a header row"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNoFile, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("lookup: %w", ErrProjectNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Project not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrProjectNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
		if got := MapError(fmt.Errorf("outer: %w", userErr)); got.Code != "STO001" {
			t.Errorf("MapError(wrapped UserError) code = %q, want STO001", got.Code)
		}
	})
}

func TestInvalidRequest(t *testing.T) {
	cause := errors.New("separator must be a single character")
	err := InvalidRequest("invalid delimiter", cause)

	if !errors.Is(err, ErrInvalidRequest) {
		t.Error("InvalidRequest should match ErrInvalidRequest")
	}
	if !errors.Is(err, cause) {
		t.Error("InvalidRequest should keep the cause")
	}

	msg := MapError(err)
	if msg.Code != "REQ001" || msg.Message != "invalid delimiter" {
		t.Errorf("MapError() = %+v, want REQ001 with detail message", msg)
	}

	if got := MapError(InvalidRequest("bad id", nil)); got.Code != "REQ001" {
		t.Errorf("MapError() code = %q, want REQ001", got.Code)
	}
}
