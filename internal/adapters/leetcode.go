package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LeetCodeProfile is the raw payload returned by the LeetCode stats API
type LeetCodeProfile struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TotalSolved  int    `json:"totalSolved"`
	EasySolved   int    `json:"easySolved"`
	MediumSolved int    `json:"mediumSolved"`
	HardSolved   int    `json:"hardSolved"`
}

// LeetCodeClient fetches solved-problem counts for a LeetCode handle
type LeetCodeClient struct {
	baseURL string
	client  *http.Client
}

// NewLeetCodeClient creates a new LeetCode stats client
func NewLeetCodeClient(baseURL string, timeout time.Duration) *LeetCodeClient {
	return &LeetCodeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the profile for one handle, retrying transient failures
// with exponential backoff. Unknown users and undecodable bodies are not
// retried.
func (c *LeetCodeClient) Fetch(ctx context.Context, handle string) (*LeetCodeProfile, error) {
	var profile *LeetCodeProfile

	fetchFn := func() error {
		p, err := c.fetchOnce(ctx, handle)
		if err != nil {
			return err
		}
		profile = p
		return nil
	}

	if err := backoff.Retry(fetchFn, backoff.WithContext(newFetchBackoff(), ctx)); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *LeetCodeClient) fetchOnce(ctx context.Context, handle string) (*LeetCodeProfile, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var profile LeetCodeProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	// The stats API reports lookup failures with a 200 and status "error"
	if profile.Status != "success" {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrUnavailable, profile.Message))
	}

	return &profile, nil
}
