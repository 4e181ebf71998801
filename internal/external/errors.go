// Package external classifies failures of calls to managed services.
// Classification is informational only: callers propagate the error unchanged
// and leave redelivery to the hosting runtime.
package external

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// Kind describes why an external call failed
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRejected    Kind = "rejected"
	KindValidation  Kind = "validation"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// Common sentinel causes
var (
	ErrRejected   = errors.New("request rejected by remote service")
	ErrValidation = errors.New("request failed validation")
)

var validationCodes = map[string]bool{
	"ValidationException":       true,
	"ValidationError":           true,
	"InvalidParameter":          true,
	"InvalidParameterValue":     true,
	"InvalidParameterException": true,
	"SerializationException":    true,
}

// Error is an external call failure with its classified cause
type Error struct {
	Op     string // Operation that failed (e.g. "PutEvents")
	Target string // Destination, table or topic
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s on %s failed (%s): %v", e.Op, e.Target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err and classifies it
func NewError(op, target string, err error) *Error {
	return &Error{
		Op:     op,
		Target: target,
		Kind:   Classify(err),
		Err:    err,
	}
}

// Classify maps an error returned by an SDK or client library to a Kind
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, ErrValidation) {
		return KindValidation
	}
	if errors.Is(err, ErrRejected) {
		return KindRejected
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if validationCodes[apiErr.ErrorCode()] {
			return KindValidation
		}
		return KindRejected
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindUnavailable
	}

	return KindUnknown
}

// KindOf returns the Kind of err if it is an *Error, KindUnknown otherwise
func KindOf(err error) Kind {
	var extErr *Error
	if errors.As(err, &extErr) {
		return extErr.Kind
	}
	return KindUnknown
}
