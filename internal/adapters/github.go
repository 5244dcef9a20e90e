package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"backend/internal/models"

	"github.com/cenkalti/backoff/v4"
)

const (
	// eventsPerPage is the maximum page size of the public events feed
	eventsPerPage = 100

	// estimationMonths scales the 30-day commit count into a yearly total
	// when the exact commit search is unavailable (e.g. rate limited)
	estimationMonths = 12
)

// GitHubActivity is the raw commit activity derived for a GitHub handle.
// Method records whether TotalCommits came from the exact commit search
// or from event extrapolation.
type GitHubActivity struct {
	TotalCommits   int
	WeeklyCommits  int
	MonthlyCommits int
	Method         models.CommitMethod
}

// GitHubClient fetches commit activity for a GitHub handle
type GitHubClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGitHubClient creates a new GitHub activity client.
// The token is optional; without it the search API rate limit is tighter
// and fetches fall back to the estimated method more often.
func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	return &GitHubClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch derives commit activity for one handle. The public events feed is
// required; the exact total from the commit search is best-effort, degrading
// the method tag to "estimated" rather than failing the fetch.
func (c *GitHubClient) Fetch(ctx context.Context, handle string) (*GitHubActivity, error) {
	var events []githubEvent

	fetchFn := func() error {
		evs, err := c.fetchEvents(ctx, handle)
		if err != nil {
			return err
		}
		events = evs
		return nil
	}

	if err := backoff.Retry(fetchFn, backoff.WithContext(newFetchBackoff(), ctx)); err != nil {
		return nil, err
	}

	activity := &GitHubActivity{}
	now := time.Now()
	for _, ev := range events {
		if ev.Type != "PushEvent" {
			continue
		}
		commits := ev.Payload.Size
		if commits == 0 {
			commits = 1
		}
		if now.Sub(ev.CreatedAt) <= 7*24*time.Hour {
			activity.WeeklyCommits += commits
		}
		if now.Sub(ev.CreatedAt) <= 30*24*time.Hour {
			activity.MonthlyCommits += commits
		}
	}

	total, err := c.searchCommitTotal(ctx, handle)
	if err != nil {
		activity.TotalCommits = activity.MonthlyCommits * estimationMonths
		activity.Method = models.CommitMethodEstimated
		return activity, nil
	}

	activity.TotalCommits = total
	activity.Method = models.CommitMethodPrecise
	return activity, nil
}

type githubEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Size int `json:"size"`
	} `json:"payload"`
}

func (c *GitHubClient) fetchEvents(ctx context.Context, handle string) ([]githubEvent, error) {
	url := fmt.Sprintf("%s/users/%s/events/public?per_page=%d", c.baseURL, handle, eventsPerPage)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var events []githubEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	return events, nil
}

// searchCommitTotal queries the commit search API for an exact author
// commit count. No retry here: a single failure just downgrades the
// method tag, which is cheaper than burning the rate limit further.
func (c *GitHubClient) searchCommitTotal(ctx context.Context, handle string) (int, error) {
	url := fmt.Sprintf("%s/search/commits?q=author:%s&per_page=1", c.baseURL, handle)

	resp, err := c.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError(resp)
	}

	var result struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return result.TotalCount, nil
}

func (c *GitHubClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
