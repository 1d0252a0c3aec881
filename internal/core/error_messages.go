package core

// error_messages.go maps technical errors to user-friendly messages with
// support codes. Faculty uploading result sheets quote the code to support
// staff instead of pasting a pgx stack trace.
//
// Codes by category:
//
//	DB001 duplicate key          DB002 unique constraint
//	DB003 record not found       DB004 connection refused
//	DB006 timeout
//	VAL003 required field        VAL004 missing column
//	FILE002 invalid sheet        FILE005 empty file
//	UPL002 system busy           UPL004/UPL005 cancelled / timed out
//	ERR000 fallback
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is user-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference code
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this roll number already exists",
			Action:  "Check the report's duplicate list before re-uploading",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review the sheet for repeated roll numbers or subject codes",
			Code:    "DB002",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested record was not found",
			Action:  "Check the roll number or code and try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller sheet or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "A required field is missing",
			Action:  "Fill in all required form fields and columns",
			Code:    "VAL003",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the sheet",
			Action:  "Check the sheet header against the upload template",
			Code:    "VAL004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no data rows",
			Action:  "Upload a sheet with at least one result row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "parse sheet",
		msg: UserMessage{
			Message: "The file could not be read as a result sheet",
			Action:  "Upload a .xlsx or .csv file exported from the template",
			Code:    "FILE002",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "Too many uploads are being processed right now",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller sheet or check your connection",
			Code:    "UPL005",
		},
	},
}

// MapError converts a technical error to a user-friendly message. Unmatched
// errors get the ERR000 fallback; the technical detail stays in server logs.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Success", Code: ""}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// FormatUserError renders a UserMessage as a single line for plain-text
// contexts.
func FormatUserError(msg UserMessage) string {
	if msg.Action != "" {
		return fmt.Sprintf("%s. %s (%s)", msg.Message, msg.Action, msg.Code)
	}
	return fmt.Sprintf("%s (%s)", msg.Message, msg.Code)
}
