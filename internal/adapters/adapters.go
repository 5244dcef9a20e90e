// Package adapters contains the HTTP clients for the external stat
// providers. Each client fetches raw stats for a single handle and can
// fail independently; callers degrade failures to zero-valued stat blocks.
package adapters

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrUnavailable indicates a network failure, timeout or non-success
	// status from a provider
	ErrUnavailable = errors.New("stat source unavailable")

	// ErrMalformedPayload indicates the provider answered with a success
	// status but an undecodable body
	ErrMalformedPayload = errors.New("stat source returned malformed payload")
)

// statusError maps an HTTP response status to an adapter error.
// Server-side errors are retryable; client-side errors are not.
func statusError(resp *http.Response) error {
	err := fmt.Errorf("%w: %s returned %d", ErrUnavailable, resp.Request.URL.Host, resp.StatusCode)
	if resp.StatusCode >= 500 {
		return err
	}
	return backoff.Permanent(err)
}

// newFetchBackoff returns the retry policy shared by both adapters.
// Kept short: the orchestrator already bounds each fetch with a timeout.
func newFetchBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 6 * time.Second
	return bo
}
