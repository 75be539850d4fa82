// Where: internal/vision/errors.go
// What: Error taxonomy for the analysis call.
// Why: Let the CLI/UI boundary report which step failed without string matching.
package vision

import "fmt"

// InvalidImageError reports an unreadable path or unsupported image payload.
// It is raised before any network call is attempted.
type InvalidImageError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidImageError) Error() string {
	target := e.Path
	if target == "" {
		target = "image"
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid image %s: %v", target, e.Err)
	}
	return fmt.Sprintf("invalid image %s: %s", target, e.Reason)
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// AuthError reports that the token provider could not produce a token or
// that the service rejected it.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %v", e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError reports an HTTP 429 that survived the single retry.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("rate limited by service: %v", e.Err) }

func (e *RateLimitError) Unwrap() error { return e.Err }

// NetworkError reports a transport-level or unexpected service failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response that decoded but did not have the
// expected shape.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed service response: %s", e.Reason)
}
