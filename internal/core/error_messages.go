package core

// error_messages.go maps import errors to user-facing messages with codes
// that can be quoted in bug reports.
//
// Codes by category:
//
//	IMP001-IMP099  import run errors (unknown kinds, concurrent runs, cancellation)
//	CSV001-CSV099  source table errors
//	VAL001-VAL099  record validation errors
//	STO001-STO099  entity and state storage errors
//	ERR000         anything unrecognised; check the logs for the technical error

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// sentinelMessages are checked with errors.Is before any text pattern.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrUnknownKind, UserMessage{"Content kind is not supported", "Use one of the registered kinds (article, page)", "IMP001"}},
	{ErrImportInProgress, UserMessage{"Another import or delete is running", "Wait for it to finish and try again", "IMP002"}},
	{entity.ErrUnknownEntityType, UserMessage{"Entity type is not supported by the store", "Check the entity type of the content file", "IMP003"}},
	{context.Canceled, UserMessage{"The run was cancelled", "Run the command again; already created content is tracked for deletion", "IMP004"}},
	{context.DeadlineExceeded, UserMessage{"The run timed out", "Raise IMPORT_TIMEOUT or try again", "IMP005"}},
	{ErrMissingColumn, UserMessage{"A required column is missing from a content file", "Ensure id, title and status columns are present", "CSV002"}},
	{ErrReadTable, UserMessage{"A content file could not be read", "Check file permissions and CSV quoting", "CSV001"}},
	{ErrInvalidRecord, UserMessage{"A content row is invalid", "Check the slug and language settings of the row", "VAL001"}},
	{entity.ErrMissingField, UserMessage{"A required field is empty", "Check the content kind of the row", "VAL002"}},
	{entity.ErrTranslationExists, UserMessage{"A translation was attached twice", "Remove duplicate rows with the same id from the language file", "VAL003"}},
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"duplicate key", UserMessage{"A record with this identifier already exists", "Delete imported content before importing again", "STO001"}},
	{"unique constraint", UserMessage{"A record with this identifier already exists", "Delete imported content before importing again", "STO001"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Check DATABASE_URL and that the database is running", "STO002"}},
	{"database is locked", UserMessage{"The database is busy", "Close other programs using the database and try again", "STO003"}},
	{"deadlock", UserMessage{"The database is busy", "Please try again", "STO003"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "STO004"}},
	{"permission denied", UserMessage{"Permission denied", "Check file and directory permissions", "STO005"}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
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
