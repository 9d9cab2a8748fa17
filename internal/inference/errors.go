package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
)

// Kind is the user-safe category of a failed conversation turn.
type Kind string

// Failure kinds.
const (
	KindTooLong         Kind = "too_long"
	KindTimeout         Kind = "timeout"
	KindUnavailable     Kind = "unavailable"
	KindServerError     Kind = "server_error"
	KindRejected        Kind = "rejected"
	KindInvalidResponse Kind = "invalid_response"
	KindEmptyResponse   Kind = "empty_response"
	KindCanceled        Kind = "canceled"
)

// Transient reports whether another attempt may succeed.
func (k Kind) Transient() bool {
	switch k {
	case KindTimeout, KindUnavailable, KindServerError:
		return true
	default:
		return false
	}
}

// Failure is returned by Converse. Err carries operator detail and must not
// be shown to users.
type Failure struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("inference %s after %d attempt(s)", f.Kind, f.Attempts)
	}
	return fmt.Sprintf("inference %s after %d attempt(s): %v", f.Kind, f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// KindOf extracts the failure kind from err, or "" if err is not a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// statusCode returns the HTTP status carried by a go-openai error, or 0.
// A body whose "error" field is a plain string yields a RequestError wrapping
// an APIError with no status, so the outer RequestError is checked first.
func statusCode(err error) int {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode
	}
	return 0
}

// classify maps an attempt error to a failure kind. parent is the caller's
// context; its cancellation ends the conversation turn at once.
func classify(parent context.Context, err error) Kind {
	if parent.Err() != nil {
		return KindCanceled
	}

	if code := statusCode(err); code != 0 {
		if code >= http.StatusInternalServerError {
			return KindServerError
		}
		return KindRejected
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return KindUnavailable
	}

	// Anything else reached us after a 2xx: the body could not be decoded.
	return KindInvalidResponse
}
