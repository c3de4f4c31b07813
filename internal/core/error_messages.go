// Error codes reference
//
// User-facing messages carry a code that operators can quote when reporting
// a problem. Codes are grouped by category:
//
//	HDR001  Invalid header        no path column in the first row
//	HDR002  Empty file            the input has no rows at all
//	ROW001  Row skipped           a row could not become a file node
//	IMP001  System busy           too many imports in progress
//	IMP002  Unknown profile       substitution profile is not registered
//	IMP003  Import cancelled      context canceled
//	IMP004  Import timed out      context deadline exceeded
//	FILE001 File too large        upload exceeds the size limit
//	FILE002 Invalid CSV           tokenizer could not read the input
//	FILE004 No file               request carried no file
//	STO001  Project not found     unknown project id
//	STO002  Store unavailable     connection refused / reset
//	QRY001  Invalid query         JSONPath expression does not parse
//	REQ001  Invalid request       malformed request parameter
//	ERR000  Unknown error         fallback; check the logs
//
// Sentinel errors are matched with errors.Is first. Other errors fall back to
// case-insensitive substring patterns; the first match wins.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgInvalidHeader = UserMessage{
		Message: "The header row has no path column",
		Action:  "Add a \"path\" column or choose a profile that renames one",
		Code:    "HDR001",
	}
	msgEmptyInput = UserMessage{
		Message: "The file is empty",
		Action:  "Upload a CSV file with a header row",
		Code:    "HDR002",
	}
	msgRowShape = UserMessage{
		Message: "A row could not be imported",
		Action:  "Check that every row has a path and the same number of fields as the header",
		Code:    "ROW001",
	}
	msgTooManyImports = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgUnknownProfile = UserMessage{
		Message: "Unknown substitution profile",
		Action:  "List available profiles with GET /api/profiles",
		Code:    "IMP002",
	}
	msgCancelled = UserMessage{
		Message: "Import was cancelled",
		Action:  "Please try again",
		Code:    "IMP003",
	}
	msgTimeout = UserMessage{
		Message: "Import timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP004",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to import",
		Code:    "FILE004",
	}
	msgInvalidRequest = UserMessage{
		Message: "The request has an invalid parameter",
		Action:  "Check the request parameters and try again",
		Code:    "REQ001",
	}
	msgNotFound = UserMessage{
		Message: "Project not found",
		Action:  "Check the project id",
		Code:    "STO001",
	}
)

var errorSentinels = []struct {
	err error
	msg UserMessage
}{
	{ErrInvalidHeader, msgInvalidHeader},
	{ErrEmptyInput, msgEmptyInput},
	{ErrRowShape, msgRowShape},
	{ErrTooManyImports, msgTooManyImports},
	{ErrUnknownProfile, msgUnknownProfile},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrNoFile, msgNoFile},
	{ErrProjectNotFound, msgNotFound},
	{ErrInvalidRequest, msgInvalidRequest},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPatterns catches errors that crossed a boundary as text (driver
// errors, wrapped strings) and lost their identity.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"invalid header", msgInvalidHeader},
	{"empty file", msgEmptyInput},
	{"too many imports", msgTooManyImports},
	{"unknown profile", msgUnknownProfile},
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"no file provided", msgNoFile},
	{"project not found", msgNotFound},
	{"parse error on line", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Check the delimiter and quoting of the file",
		Code:    "FILE002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to reach the project store",
		Action:  "Please try again in a few moments",
		Code:    "STO002",
	}},
	{"connection reset", UserMessage{
		Message: "Connection to the project store was interrupted",
		Action:  "Please try again",
		Code:    "STO002",
	}},
	{"invalid jsonpath", UserMessage{
		Message: "The query expression is not valid JSONPath",
		Action:  "Use an expression such as $..children[?(@.type == 'File')].name",
		Code:    "QRY001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// InvalidRequest wraps err as ErrInvalidRequest with detail as the user
// message.
func InvalidRequest(detail string, err error) *UserError {
	technical := fmt.Errorf("%w: %s", ErrInvalidRequest, detail)
	if err != nil {
		technical = fmt.Errorf("%w: %s: %w", ErrInvalidRequest, detail, err)
	}
	msg := msgInvalidRequest
	msg.Message = detail
	return &UserError{Technical: technical, User: msg}
}

// NewUserError maps err to a user message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
