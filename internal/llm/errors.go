package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigInvalid means the opponent's model configuration cannot be used.
	// It is detected before any network call.
	ErrConfigInvalid = errors.New("invalid model configuration")

	// ErrUpstream covers every failure of the remote model: transport, auth,
	// rate limiting, timeouts, non-2xx answers and unparseable output.
	ErrUpstream = errors.New("upstream model failure")
)

// UpstreamError records which gateway operation failed and why
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstream.Error(), e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func configInvalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, reason)
}
