package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Size int `json:"size"`
	} `json:"payload"`
}

func pushEvent(age time.Duration, commits int) eventFixture {
	ev := eventFixture{Type: "PushEvent", CreatedAt: time.Now().Add(-age)}
	ev.Payload.Size = commits
	return ev
}

func newGitHubTestServer(t *testing.T, events []eventFixture, searchStatus int, totalCount int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/events/public", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(events)
	})
	mux.HandleFunc("/search/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "author:octocat", r.URL.Query().Get("q"))
		if searchStatus != http.StatusOK {
			w.WriteHeader(searchStatus)
			return
		}
		fmt.Fprintf(w, `{"total_count":%d}`, totalCount)
	})

	return httptest.NewServer(mux)
}

func TestGitHubClientFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("derives precise totals when the search API answers", func(t *testing.T) {
		events := []eventFixture{
			pushEvent(2*24*time.Hour, 3),
			pushEvent(20*24*time.Hour, 10),
			{Type: "WatchEvent", CreatedAt: time.Now()},
		}
		server := newGitHubTestServer(t, events, http.StatusOK, 1234)
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		activity, err := client.Fetch(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, 1234, activity.TotalCommits)
		assert.Equal(t, 3, activity.WeeklyCommits)
		assert.Equal(t, 13, activity.MonthlyCommits)
		assert.Equal(t, models.CommitMethodPrecise, activity.Method)
	})

	t.Run("falls back to estimation when the search API is rate limited", func(t *testing.T) {
		events := []eventFixture{
			pushEvent(24*time.Hour, 5),
		}
		server := newGitHubTestServer(t, events, http.StatusForbidden, 0)
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		activity, err := client.Fetch(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, models.CommitMethodEstimated, activity.Method)
		assert.Equal(t, 5, activity.WeeklyCommits)
		assert.Equal(t, 5, activity.MonthlyCommits)
		assert.Equal(t, 5*estimationMonths, activity.TotalCommits)
	})

	t.Run("counts a push without a size as one commit", func(t *testing.T) {
		events := []eventFixture{
			pushEvent(24*time.Hour, 0),
		}
		server := newGitHubTestServer(t, events, http.StatusOK, 7)
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		activity, err := client.Fetch(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, 1, activity.WeeklyCommits)
	})

	t.Run("old pushes count toward neither window", func(t *testing.T) {
		events := []eventFixture{
			pushEvent(60*24*time.Hour, 8),
		}
		server := newGitHubTestServer(t, events, http.StatusOK, 90)
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		activity, err := client.Fetch(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, 0, activity.WeeklyCommits)
		assert.Equal(t, 0, activity.MonthlyCommits)
		assert.Equal(t, 90, activity.TotalCommits)
	})

	t.Run("unknown user fails the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		_, err := client.Fetch(ctx, "octocat")

		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("undecodable events feed reports malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"not":"an array"}`)
		}))
		defer server.Close()

		client := NewGitHubClient(server.URL, "", time.Second)
		_, err := client.Fetch(ctx, "octocat")

		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("sends the bearer token when configured", func(t *testing.T) {
		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat/events/public", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `[]`)
		})
		mux.HandleFunc("/search/commits", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"total_count":0}`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewGitHubClient(server.URL, "ghp_testtoken", time.Second)
		_, err := client.Fetch(ctx, "octocat")

		require.NoError(t, err)
		assert.Equal(t, "Bearer ghp_testtoken", gotAuth)
	})
}
