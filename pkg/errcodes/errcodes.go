package errcodes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNoRecordFound    = errors.New("no record found")
	ErrContextCancelled = errors.New("context cancelled")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidRepoName  = errors.New("invalid repository name")
)

// Kind classifies an Error for callers that need to branch on failure type.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_FAILED"
	KindNotFound           Kind = "NOT_FOUND"
	KindUpstream           Kind = "UPSTREAM_FAILED"
	KindPersistence        Kind = "PERSISTENCE_FAILED"
	KindUnsupportedChannel Kind = "UNSUPPORTED_CHANNEL"
	KindChannelUnavailable Kind = "CHANNEL_NOT_CONFIGURED"
	KindCancelled          Kind = "REQUEST_CANCELLED"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Error is an application error with a kind and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindUnsupportedChannel:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindChannelUnavailable:
		return http.StatusServiceUnavailable
	case KindCancelled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Err: ErrNoRecordFound}
}

func Upstream(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindUpstream, fmt.Sprintf(format, args...))
}

func Persistence(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindPersistence, fmt.Sprintf(format, args...))
}

func UnsupportedChannel(kind string) *Error {
	return New(KindUnsupportedChannel, fmt.Sprintf("unsupported notification channel: %s", kind))
}

// ChannelNotConfigured is a known channel kind without a registered sender.
func ChannelNotConfigured(kind string) *Error {
	return New(KindChannelUnavailable, fmt.Sprintf("notification channel not configured: %s", kind))
}

// InvalidSortField unwraps to ErrInvalidSortField.
func InvalidSortField(field string, allowed []string) *Error {
	return Wrap(ErrInvalidSortField, KindValidation,
		fmt.Sprintf("invalid sort field %q, must be one of: %s", field, strings.Join(allowed, ", ")))
}

// Cancelled wraps ctx.Err() so that it matches both ErrContextCancelled and
// the context error itself.
func Cancelled(ctxErr error) *Error {
	return Wrap(fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr), KindCancelled, "request cancelled or timed out")
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
