package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL      = errors.New("invalid channel url")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// RemoteAPIError is a transport or API failure of a single remote call.
// Use errors.As to tell it apart from a legitimately empty result.
type RemoteAPIError struct {
	// Op names the API call, e.g. "search.list".
	Op string
	// Target is the id or query the call was made for.
	Target string
	// StatusCode is the HTTP status returned by the API, 0 for transport failures.
	StatusCode int
	Err        error
}

func (e *RemoteAPIError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("remote api %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote api %s (%s): %v", e.Op, e.Target, e.Err)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// NewRemoteAPIError wraps err unless it already is a RemoteAPIError
func NewRemoteAPIError(op, target string, err error) error {
	var remote *RemoteAPIError
	if errors.As(err, &remote) {
		return err
	}
	return &RemoteAPIError{Op: op, Target: target, Err: err}
}

// IsRemoteAPIError reports whether err carries a RemoteAPIError
func IsRemoteAPIError(err error) bool {
	var remote *RemoteAPIError
	return errors.As(err, &remote)
}
