// # Error Codes Reference
//
// This file maps technical errors from the loader and the destination store
// to operator-friendly messages with codes. The import console prints the
// friendly form next to each failed insert; the raw error goes to the log.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A party with this code already exists
//	        Patterns: "duplicate key", "23505"
//
//	DB002 - Not-null constraint: A required column was sent empty
//	        Patterns: "not-null constraint", "23502"
//
//	DB003 - Foreign key: The company code does not exist in the destination
//	        Patterns: "foreign key constraint", "violates foreign key", "23503"
//
//	DB004 - Connection refused: Unable to reach the destination
//	        Patterns: "connection refused", "no such host"
//
//	DB005 - Connection reset: Connection was interrupted
//	        Patterns: "connection reset", "broken pipe"
//
//	DB006 - Timeout: Insert timed out
//	        Patterns: "timeout", "context deadline exceeded"
//
//	DB007 - Unknown column: Destination table does not match the record layout
//	        Patterns: "column", "pgrst204"
//
//	DB008 - Row-level security: Policy blocked the insert
//	        Patterns: "row-level security", "42501"
//
//	DB009 - Interrupted: The run was cancelled before the insert finished
//	        Patterns: "context canceled"
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid key: The access key was rejected
//	          Patterns: "invalid api key", "jwt", "401"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid number: A numeric column holds text
//	         Patterns: "invalid number"
//
//	VAL002 - Required field: Row has neither FANTASIA nor RAZAO
//	         Patterns: "required field"
//
//	VAL003 - Column not found: Expected column not found in the file
//	         Patterns: "column not found"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Encoding error: File could not be decoded with any candidate
//	          Patterns: "encoding error"
//
//	FILE003 - Empty file: The file has no header row
//	          Patterns: "empty file"
//
//	FILE004 - Missing file: The file does not exist
//	          Patterns: "no such file"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones. DB007 matches the bare word "column", which is why it
// sits after the not-null and validation patterns that also mention columns.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides operator-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgDuplicate = UserMessage{
		Message: "A party with this code already exists",
		Action:  "Remove the record from the destination or from the file and run again",
		Code:    "DB001",
	}
	msgNotNull = UserMessage{
		Message: "A required column was sent empty",
		Action:  "Check the destination table defaults for the reported column",
		Code:    "DB002",
	}
	msgForeignKey = UserMessage{
		Message: "The company code does not exist in the destination",
		Action:  "Check IMPORT_COMPANY_CODE",
		Code:    "DB003",
	}
	msgRefused = UserMessage{
		Message: "Unable to reach the destination",
		Action:  "Check SUPABASE_URL and your network, then try again",
		Code:    "DB004",
	}
	msgReset = UserMessage{
		Message: "Connection to the destination was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}
	msgTimeout = UserMessage{
		Message: "Insert timed out",
		Action:  "Raise STORE_TIMEOUT or try again later",
		Code:    "DB006",
	}
	msgColumn = UserMessage{
		Message: "Destination table does not match the record layout",
		Action:  "Compare the table columns with the import columns",
		Code:    "DB007",
	}
	msgRLS = UserMessage{
		Message: "Row-level security blocked the insert",
		Action:  "Use the service key or generate an SQL script with --backend sql",
		Code:    "DB008",
	}
	msgAuth = UserMessage{
		Message: "The access key was rejected",
		Action:  "Check SUPABASE_KEY in the secrets file",
		Code:    "AUTH001",
	}
)

// errorPatterns maps technical error patterns (lowercase) to messages.
// The first match wins.
var errorPatterns = []errorPattern{
	// Constraints
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "23505", msg: msgDuplicate},
	{pattern: "not-null constraint", msg: msgNotNull},
	{pattern: "23502", msg: msgNotNull},
	{pattern: "foreign key constraint", msg: msgForeignKey},
	{pattern: "violates foreign key", msg: msgForeignKey},
	{pattern: "23503", msg: msgForeignKey},
	{pattern: "row-level security", msg: msgRLS},
	{pattern: "42501", msg: msgRLS},

	// Auth
	{pattern: "invalid api key", msg: msgAuth},
	{pattern: "jwt", msg: msgAuth},
	{pattern: "status 401", msg: msgAuth},

	// Connectivity
	{pattern: "connection refused", msg: msgRefused},
	{pattern: "no such host", msg: msgRefused},
	{pattern: "connection reset", msg: msgReset},
	{pattern: "broken pipe", msg: msgReset},
	{pattern: "timeout", msg: msgTimeout},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The import was interrupted",
			Action:  "Check which records were inserted before running again",
			Code:    "DB009",
		},
	},

	// Validation
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A numeric column holds text",
			Action:  "Fix the value in the source file",
			Code:    "VAL001",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Row has neither FANTASIA nor RAZAO",
			Action:  "Fill in a name for the row",
			Code:    "VAL002",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Expected column not found in the file",
			Action:  "Verify the export header; missing columns are read as blank",
			Code:    "VAL003",
		},
	},

	// Files
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File could not be decoded with any candidate encoding",
			Action:  "Save the file as UTF-8 or add its encoding to IMPORT_ENCODINGS",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Export the file again with a header line",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check IMPORT_FILE or --file",
			Code:    "FILE004",
		},
	},

	// Generic column mismatch last: many messages above mention columns.
	{pattern: "pgrst204", msg: msgColumn},
	{pattern: "column", msg: msgColumn},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for the original error",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
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

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
