package client

import (
	"fmt"
	"strings"
)

// AuthenticationError reports a failed client-credentials exchange or a
// token response without an access token. It is never retried.
type AuthenticationError struct {
	// StatusCode is the token endpoint's status, 0 when no response was read.
	StatusCode int
	// Body holds the raw response body, which usually names the OAuth error.
	Body string
	Err  error
}

func (e *AuthenticationError) Error() string {
	var sb strings.Builder
	sb.WriteString("authentication failed")

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status code %d", e.StatusCode)
	}

	if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", e.Body)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, ", err: %v", e.Err)
	}

	return sb.String()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RateLimitExhaustedError is returned once a request has been answered with
// 429 more times than the configured retry budget allows. Pagination state
// is lost; callers restart the fetch.
type RateLimitExhaustedError struct {
	URL      string
	Attempts int
}

func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exceeded and retries exhausted after %d attempts: %s", e.Attempts, e.URL)
}

// HTTPError is any non-2xx, non-429 response. It is not retried.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d from %s: %s", e.StatusCode, e.URL, e.Body)
}
