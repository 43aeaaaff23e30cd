// Package apperr defines the error taxonomy shared by the upstream clients
// and the response router.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or invalid setting. No remote call is
// attempted when it is returned, so it has no cause to unwrap.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// UpstreamError wraps a network, status or decoding failure from a remote API.
type UpstreamError struct {
	Service     string
	Op          string
	StatusCode  int
	RateLimited bool
	Err         error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EmptyResponseError is returned when the generative API answers without text.
type EmptyResponseError struct {
	Service string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s returned an empty response", e.Service)
}

// IsConfiguration reports whether err contains a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsUpstream reports whether err contains an UpstreamError.
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsEmptyResponse reports whether err contains an EmptyResponseError.
func IsEmptyResponse(err error) bool {
	var target *EmptyResponseError
	return errors.As(err, &target)
}

// IsRateLimited reports whether err is an UpstreamError caused by a quota or
// rate limit on the remote side.
func IsRateLimited(err error) bool {
	var target *UpstreamError
	if errors.As(err, &target) {
		return target.RateLimited
	}
	return false
}
