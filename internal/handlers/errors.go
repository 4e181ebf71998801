package handlers

import "errors"

// Malformed event errors. These fail the invocation; they are not retried locally.
var (
	ErrMissingDetail    = errors.New("event detail is missing")
	ErrMissingAttribute = errors.New("message attribute is missing")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
