package interfaces

import (
	"errors"
	"fmt"
)

// ErrSettingsNotFound is returned when a user has no saved location.
var ErrSettingsNotFound = errors.New("user settings not found")

// UpstreamError wraps a failure from an external service so callers can tell
// which dependency broke without parsing messages.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports an upstream payload that parsed but did not
// match the expected shape.
type MalformedResponseError struct {
	Service string
	Detail  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned malformed response: %s", e.Service, e.Detail)
}
