package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure. The classification travels with the error
// all the way to the orchestration layer so callers can branch on it instead
// of string-matching messages.
type Kind string

const (
	// KindNetwork: the request never completed at the transport level.
	// Retried with backoff before being surfaced.
	KindNetwork Kind = "NETWORK_ERROR"
	// KindServer: the server answered with a 5xx. Retried with backoff.
	KindServer Kind = "SERVER_ERROR"
	// KindValidation: 400. Never retried.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindUnauthorized: 401 or 403. Never retried; a 401 also invalidates
	// the stored session token.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound: 404. Never retried.
	KindNotFound Kind = "NOT_FOUND"
	// KindMalformed: the server answered 2xx but the body did not decode
	// into the expected shape. Distinct from KindNetwork on purpose.
	KindMalformed Kind = "MALFORMED_RESPONSE"
	// KindDefault: any other failure.
	KindDefault Kind = "DEFAULT"
)

// Retryable reports whether a failure of this kind is worth retrying.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// Default user-facing messages per kind, used when the server response
// carries no message of its own.
var kindMessages = map[Kind]string{
	KindNetwork:      "Network error. Please check your internet connection.",
	KindServer:       "Server error. Please try again later.",
	KindUnauthorized: "You are not authorized to perform this action.",
	KindNotFound:     "The requested resource was not found.",
	KindValidation:   "Please check your input and try again.",
	KindMalformed:    "Invalid response format from server.",
	KindDefault:      "Something went wrong. Please try again.",
}

// Error is the classified failure returned by Client. Status is the HTTP
// status code, or 0 when the request never completed.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("apiclient: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf extracts the classification from err, or KindDefault when err is
// not an *Error from this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindDefault
}

// classifyStatus maps a non-2xx HTTP status to its Kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return KindDefault
	}
}

func messageFor(kind Kind) string {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return kindMessages[KindDefault]
}
