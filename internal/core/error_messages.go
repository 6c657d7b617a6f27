package core

// error_messages.go maps technical errors to user-facing messages with codes
// that can be quoted to support.
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Empty file            Patterns: "empty file"
//	PARSE002 - File too large        Patterns: "file too large"
//	PARSE003 - Encoding error        Patterns: "encoding error"
//	PARSE004 - Blank header row      Patterns: "blank header row"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Required field empty    Patterns: "required field"
//	VAL002 - Invalid mapping         Patterns: "invalid mapping"
//	VAL003 - Unknown entity kind     Patterns: "unknown entity kind"
//
// # Resolution Errors (RES001-RES099)
//
//	RES001 - Parent not resolved     Patterns: "resolve company"
//
// # Store Errors (STO001-STO099)
//
//	STO001 - Duplicate key           Patterns: "duplicate key"
//	STO002 - Unique constraint       Patterns: "unique constraint", "violates unique"
//	STO003 - Foreign key             Patterns: "foreign key"
//	STO004 - Connection refused      Patterns: "connection refused"
//	STO005 - Connection reset        Patterns: "connection reset"
//	STO006 - Store busy              Patterns: "deadlock", "database is locked"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy             Patterns: "too many concurrent imports"
//	RUN002 - Request cancelled       Patterns: "context canceled"
//	RUN003 - Timeout                 Patterns: "timeout", "context deadline exceeded"
//
// Anything else maps to ERR000. Patterns are matched case-insensitively with
// strings.Contains and the first match wins, so specific patterns come
// before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgDuplicate = UserMessage{
		Message: "A record with this key already exists",
		Action:  "Review the failed rows for duplicates",
		Code:    "STO001",
	}
	msgUnique = UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate entries in your file",
		Code:    "STO002",
	}
	msgBusy = UserMessage{
		Message: "The record store was busy with conflicting writes",
		Action:  "Please try again",
		Code:    "STO006",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Try importing a smaller file or try again later",
		Code:    "RUN003",
	}
)

var errorPatterns = []errorPattern{
	// Parse
	{"empty file", UserMessage{
		Message: "The file is empty",
		Action:  "Upload a file with a header row and data rows",
		Code:    "PARSE001",
	}},
	{"file too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "PARSE002",
	}},
	{"encoding error", UserMessage{
		Message: "File contains characters that could not be decoded",
		Action:  "Save the file as UTF-8",
		Code:    "PARSE003",
	}},
	{"blank header row", UserMessage{
		Message: "The first row has no column names",
		Action:  "Add a header row; download a template for the expected columns",
		Code:    "PARSE004",
	}},

	// Validation
	{"required field", UserMessage{
		Message: "Required field is empty",
		Action:  "Ensure all required columns have values",
		Code:    "VAL001",
	}},
	{"invalid mapping", UserMessage{
		Message: "The column mapping does not fit this file",
		Action:  "Check field names and column numbers in the mapping",
		Code:    "VAL002",
	}},
	{"unknown entity kind", UserMessage{
		Message: "This record type is not supported",
		Action:  "Import companies or contacts",
		Code:    "VAL003",
	}},

	// Resolution
	{"resolve company", UserMessage{
		Message: "The referenced company could not be found or created",
		Action:  "Check the company name on the failed rows and try again",
		Code:    "RES001",
	}},

	// Store
	{"duplicate key", msgDuplicate},
	{"unique constraint", msgUnique},
	{"violates unique", msgUnique},
	{"foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Import parent records first",
		Code:    "STO003",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to the record store",
		Action:  "Please try again in a few moments",
		Code:    "STO004",
	}},
	{"connection reset", UserMessage{
		Message: "Connection to the record store was interrupted",
		Action:  "Please try again",
		Code:    "STO005",
	}},
	{"deadlock", msgBusy},
	{"database is locked", msgBusy},

	// Run
	{"too many concurrent imports", UserMessage{
		Message: "Too many imports in progress",
		Action:  "Please wait a moment and try again",
		Code:    "RUN001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "RUN002",
	}},
	{"timeout", msgTimeout},
	{"context deadline exceeded", msgTimeout},
}

// defaultMessage is returned when no pattern matches. Check the logs for the
// original error when a user reports ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(errors.New("UNIQUE constraint failed: companies.name"))
//	// msg.Code == "STO002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// RowErrorCode returns the support code for a row error.
func RowErrorCode(e ValidationError) string {
	return MapError(errors.New(e.Message)).Code
}
