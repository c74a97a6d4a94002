package core

// error_messages.go turns errors into user-facing messages with support codes.
//
// Catalogued *card.Error values carry their own code, message and action (see
// the card package). Everything else is an infrastructure error and is matched
// against the patterns below:
//
//	DB001 - Duplicate key          Patterns: "duplicate key", "unique constraint"
//	DB004 - Connection refused     Patterns: "connection refused"
//	DB005 - Connection reset       Patterns: "connection reset"
//	DB006 - Timeout                Patterns: "timeout", "i/o timeout"
//	DB007 - Deadlock               Patterns: "deadlock"
//	UPL002 - System busy           Patterns: "too many concurrent uploads"
//	UPL004 - Request cancelled     Patterns: "context canceled"
//	UPL005 - Request timeout       Patterns: "context deadline exceeded"
//	RATE001 - Rate limited         Patterns: "rate limit"
//	ERR000 - Unknown error         fallback
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/cardex/internal/card"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{"A business card with this email already exists", "Use a different email or update the existing card", "DB001"}},
	{"unique constraint", UserMessage{"A business card with this email already exists", "Use a different email or update the existing card", "DB001"}},
	{"connection refused", UserMessage{"Unable to connect to the data store", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"The data store connection was interrupted", "Please try again", "DB005"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "UPL005"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"The data store was busy with conflicting operations", "Please try again", "DB007"}},
	{"too many concurrent uploads", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "UPL002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when nothing matches. Support staff should check
// the logs for the original error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ce *card.Error
	if errors.As(err, &ce) {
		e := card.Lookup(ce.Kind)
		msg := e.Message
		if ce.Field != "" {
			msg = ce.Field + ": " + msg
		}
		return UserMessage{Message: msg, Action: e.Action, Code: e.Code}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders MapError as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
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

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
