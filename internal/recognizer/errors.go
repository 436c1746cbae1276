package recognizer

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies provider and pipeline failures into a small taxonomy
// surfaced to the caller's error callback.
type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindProviderInternal    Kind = "provider_internal"
	KindRateLimited         Kind = "rate_limited"
	KindServiceUnavailable  Kind = "service_unavailable"
	KindInvalidProfile      Kind = "invalid_profile"
	KindIncompleteArtifacts Kind = "incomplete_artifacts"
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from err, defaulting to
// KindProviderInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProviderInternal
}

// IsRetryable reports whether the caller may reasonably retry at the
// session-creation boundary. The session itself never retries.
func IsRetryable(kind Kind) bool {
	switch kind {
	case KindRateLimited, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

// Classify maps a provider transport error to the taxonomy. gRPC
// status codes are recognized; anything else is a provider-internal
// failure.
func Classify(err error, message string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	kind := KindProviderInternal
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
			kind = KindBadRequest
		case codes.ResourceExhausted:
			kind = KindRateLimited
		case codes.Unavailable, codes.DeadlineExceeded:
			kind = KindServiceUnavailable
		case codes.Internal, codes.Unknown, codes.DataLoss:
			kind = KindProviderInternal
		}
	}
	return &Error{Kind: kind, Message: message, Err: err}
}
