package vertex

import (
	"errors"
	"fmt"
)

// ContentFilteredError reports that the provider declined to produce an image
// or video for policy reasons. It is distinct from transport or server errors.
type ContentFilteredError struct {
	Reason string
}

func (e *ContentFilteredError) Error() string {
	if e.Reason == "" {
		return "content filtered by provider"
	}
	return fmt.Sprintf("content filtered by provider: %s", e.Reason)
}

// RemoteCallError wraps a transport or provider failure with the operation
// that was being attempted.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// IsContentFiltered reports whether err carries a ContentFilteredError.
func IsContentFiltered(err error) bool {
	var cf *ContentFilteredError
	return errors.As(err, &cf)
}
