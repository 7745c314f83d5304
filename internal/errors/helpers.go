package errors

import (
	"errors"
	"strings"
)

// connectionHints are message fragments that mark an error as a lost or
// unreachable connection to the rolling service.
var connectionHints = []string{"connect", "network", "timeout", "socket", "eof"}

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Code
	}

	return CodeInternal
}

// GetMeta extracts metadata from an error
func GetMeta(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Meta
	}

	return nil
}

// GetMessage extracts the top-level message from an error
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}

	return err.Error()
}

// UserMessage returns the most specific human-readable message in the chain.
// A message reported by the rolling service wins over local wrapping text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.remote && e.Message != "" {
			return e.Message
		}
	}

	return GetMessage(err)
}

// IsConnectionError reports whether err looks like a lost or unreachable
// connection, which callers answer with a reconnect cycle.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case CodeUnavailable, CodeDeadlineExceeded:
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range connectionHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsUnavailable checks if an error is an unavailable error
func IsUnavailable(err error) bool {
	return GetCode(err) == CodeUnavailable
}

// IsUnauthenticated checks if an error is an unauthenticated error
func IsUnauthenticated(err error) bool {
	return GetCode(err) == CodeUnauthenticated
}

// IsFailedPrecondition checks if an error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return GetCode(err) == CodeFailedPrecondition
}

// IsDeadlineExceeded checks if an error is a deadline exceeded error
func IsDeadlineExceeded(err error) bool {
	return GetCode(err) == CodeDeadlineExceeded
}
