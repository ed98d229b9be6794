// Package core provides the business logic for credential import and export.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Import Errors (IMP001-IMP099)
//
// Errors that reject a whole file before any row is imported:
//
//	IMP001 - Unsupported format: The file does not match any supported password manager export
//	         Action: Export again from your password manager as CSV, or choose the format explicitly
//	         Patterns: "file format not supported"
//
//	IMP002 - Missing default type: The default resource type is not configured
//	         Action: Ask an administrator to check the resource type catalog
//	         Patterns: "default resource type missing"
//
//	IMP003 - Unknown format: The selected format is not supported
//	         Action: Pick one of the listed formats
//	         Patterns: "unknown format"
//
//	IMP004 - System busy: System is busy processing other imports
//	         Action: Please wait a moment and try again
//	         Patterns: "too many imports"
//
//	IMP005 - Import not found: Import report not found
//	         Action: The report may have expired. Please import the file again
//	         Patterns: "import not found"
//
// # Validation Errors (VAL001-VAL099)
//
// Row-level errors. The row is skipped and the import continues:
//
//	VAL001 - Required field: Required field is empty
//	         Action: Ensure every entry has a value in this column
//	         Patterns: "required field"
//
//	VAL002 - Value too long: A value is longer than allowed
//	         Action: Shorten the value in your password manager and export again
//	         Patterns: "value too long"
//
//	VAL003 - Too many values: An entry has too many values
//	         Action: Remove extra URIs or custom fields
//	         Patterns: "too many"
//
//	VAL004 - Invalid folder: A folder name contains an invalid character
//	         Action: Rename the folder in your password manager
//	         Patterns: "must not contain"
//
//	VAL005 - Icon out of range: The entry icon is not recognised
//	         Action: The entry will import once the icon is reset to a built-in one
//	         Patterns: "icon out of range"
//
// # One-Time Password Errors (TOTP001-TOTP099)
//
// Row-level errors raised while decoding TOTP columns:
//
//	TOTP001 - Invalid TOTP: The one-time password settings of an entry are invalid
//	          Action: Check the TOTP secret, digits and period of the entry
//	          Patterns: "invalid totp"
//
// # File Errors (FILE001-FILE099)
//
// Errors related to reading the uploaded payload:
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the export into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure the file is a comma-separated export
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save the file as UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was provided
//	          Action: Please select a CSV file to import
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file is empty
//	          Action: Please provide an export with a header row
//	          Patterns: "empty file"
//
//	FILE006 - Invalid payload: The file could not be decoded
//	          Action: Send the file content base64 encoded
//	          Patterns: "invalid payload"
//
// # Database Errors (DB001-DB099)
//
// Errors from the import history store:
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - History disabled: Import history is not enabled
//	        Action: Configure DATABASE_URL to keep import history
//	        Patterns: "history disabled"
//
// # Request Errors (REQ001-REQ099)
//
// Errors related to the request itself:
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
//	REQ003 - Timeout: Operation timed out
//	         Action: Please try again later
//	         Patterns: "timeout"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come before
// general ones ("context deadline exceeded" before "timeout").
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Import Errors (IMP001-IMP005)
	// =========================================================================
	{
		pattern: "file format not supported",
		msg: UserMessage{
			Message: "The file does not match any supported password manager export",
			Action:  "Export again from your password manager as CSV, or choose the format explicitly",
			Code:    "IMP001",
		},
	},
	{
		pattern: "default resource type missing",
		msg: UserMessage{
			Message: "The default resource type is not configured",
			Action:  "Ask an administrator to check the resource type catalog",
			Code:    "IMP002",
		},
	},
	{
		pattern: "unknown format",
		msg: UserMessage{
			Message: "The selected format is not supported",
			Action:  "Pick one of the listed formats",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import report not found",
			Action:  "The report may have expired. Please import the file again",
			Code:    "IMP005",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL005)
	// =========================================================================
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure every entry has a value in this column",
			Code:    "VAL001",
		},
	},
	{
		pattern: "value too long",
		msg: UserMessage{
			Message: "A value is longer than allowed",
			Action:  "Shorten the value in your password manager and export again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "too many",
		msg: UserMessage{
			Message: "An entry has too many values",
			Action:  "Remove extra URIs or custom fields",
			Code:    "VAL003",
		},
	},
	{
		pattern: "must not contain",
		msg: UserMessage{
			Message: "A folder name contains an invalid character",
			Action:  "Rename the folder in your password manager",
			Code:    "VAL004",
		},
	},
	{
		pattern: "icon out of range",
		msg: UserMessage{
			Message: "The entry icon is not recognised",
			Action:  "The entry will import once the icon is reset to a built-in one",
			Code:    "VAL005",
		},
	},

	// =========================================================================
	// One-Time Password Errors (TOTP001-TOTP001)
	// =========================================================================
	{
		pattern: "invalid totp",
		msg: UserMessage{
			Message: "The one-time password settings of an entry are invalid",
			Action:  "Check the TOTP secret, digits and period of the entry",
			Code:    "TOTP001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the export into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is a comma-separated export",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Please provide an export with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid payload",
		msg: UserMessage{
			Message: "The file could not be decoded",
			Action:  "Send the file content base64 encoded",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "history disabled",
		msg: UserMessage{
			Message: "Import history is not enabled",
			Action:  "Configure DATABASE_URL to keep import history",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate key violation")
//	msg := MapError(err)
//	// msg.Code == "DB001"
//	// msg.Message == "A record with this ID already exists"
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
//
// Example output: "A record with this ID already exists (Code: DB001). Download failed rows to review duplicates"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// WrapWithUserMessage wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
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

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(dbErr)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "A record with this ID already exists"
//	fmt.Println(ue.User.Code)         // Show "DB001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
