package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeetCodeClientFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a successful profile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/johndoe", r.URL.Path)
			fmt.Fprint(w, `{"status":"success","totalSolved":150,"easySolved":80,"mediumSolved":55,"hardSolved":15}`)
		}))
		defer server.Close()

		client := NewLeetCodeClient(server.URL, time.Second)
		profile, err := client.Fetch(ctx, "johndoe")

		require.NoError(t, err)
		assert.Equal(t, 150, profile.TotalSolved)
		assert.Equal(t, 80, profile.EasySolved)
		assert.Equal(t, 55, profile.MediumSolved)
		assert.Equal(t, 15, profile.HardSolved)
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"status":"success","totalSolved":3,"easySolved":3}`)
		}))
		defer server.Close()

		client := NewLeetCodeClient(server.URL, time.Second)
		profile, err := client.Fetch(ctx, "flaky")

		require.NoError(t, err)
		assert.Equal(t, 3, profile.TotalSolved)
		assert.Equal(t, 2, calls)
	})

	t.Run("unknown user is not retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"status":"error","message":"user does not exist"}`)
		}))
		defer server.Close()

		client := NewLeetCodeClient(server.URL, time.Second)
		_, err := client.Fetch(ctx, "nobody")

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 1, calls)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewLeetCodeClient(server.URL, time.Second)
		_, err := client.Fetch(ctx, "missing")

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 1, calls)
	})

	t.Run("undecodable body reports malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>definitely not json</html>`)
		}))
		defer server.Close()

		client := NewLeetCodeClient(server.URL, time.Second)
		_, err := client.Fetch(ctx, "weird")

		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("cancelled context aborts the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			fmt.Fprint(w, `{"status":"success"}`)
		}))
		defer server.Close()

		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		client := NewLeetCodeClient(server.URL, time.Second)
		_, err := client.Fetch(cancelCtx, "slow")

		assert.Error(t, err)
	})
}
