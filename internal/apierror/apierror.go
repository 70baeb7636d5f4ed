// Package apierror defines the error classes shared by the YouTrack and
// Azure DevOps clients. The migration driver retries an issue only when the
// failure is a DecodeError; everything else aborts the run.
package apierror

import (
	"errors"
	"fmt"
)

// TransportError reports a network-level failure or a non-2xx response on a
// call whose response body is consumed.
type TransportError struct {
	Op     string // human description of the call, e.g. "fetching issue"
	URL    string
	Status int    // HTTP status, 0 if the request never completed
	Body   string // response body for non-2xx responses
	Err    error  // underlying error, nil for plain non-2xx responses
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s returned %d: %s", e.Op, e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be parsed as JSON.
// Azure DevOps occasionally returns empty bodies under load, so this is the
// one error class treated as transient.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecode reports whether err is, or wraps, a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
