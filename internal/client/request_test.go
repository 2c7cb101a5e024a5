package client

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-fetcher/internal/config"
	"reddit-fetcher/testing/fixtures"
	"reddit-fetcher/testing/mocks"
)

func tooMany(retryAfter string) mocks.Response {
	resp := mocks.Response{Status: http.StatusTooManyRequests, Body: `{"message":"Too Many Requests","error":429}`}
	if retryAfter != "" {
		resp.Header = http.Header{"Retry-After": []string{retryAfter}}
	}
	return resp
}

func ok(body string) mocks.Response {
	return mocks.Response{Status: http.StatusOK, Body: body}
}

func TestDo_ReturnsSuccessfulResponse(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueuePages(fixtures.ListingPage("", "a"))
	c, rec := newTestClient(t, srv)

	resp, body, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "hot"), url.Values{"limit": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, fixtures.ListingPage("", "a"), string(body))

	reread, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, reread)

	calls := srv.ListingCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/r/golang/hot", calls[0].Path)
	assert.Equal(t, "5", calls[0].Query.Get("limit"))
	assert.Equal(t, "Bearer token-1", calls[0].Authorization)
	assert.Equal(t, "test-agent/1.0", calls[0].UserAgent)
	assert.Empty(t, rec.durations())
}

func TestDo_RetryAfterHeaderIsHonoured(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("5"), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{5 * time.Second}, rec.durations())
	assert.Len(t, srv.ListingCalls(), 2)
}

func TestDo_ExponentialBackoffWithoutRetryAfter(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany(""), tooMany(""), tooMany(""), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, rec.durations())
	assert.Len(t, srv.ListingCalls(), 4)
}

func TestDo_MalformedRetryAfterFallsBackToBackoff(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(
		tooMany("soon"),
		tooMany("Wed, 21 Oct 2015 07:28:00 GMT"),
		tooMany("NaN"),
		ok(fixtures.ListingPage("")),
	)
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, rec.durations())
}

func TestDo_BackoffAdvancesEvenWhenRetryAfterIsUsed(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("3"), tooMany("3"), tooMany(""), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 8 * time.Second}, rec.durations())
}

func TestDo_WaitIsFlooredAtOneSecond(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("0"), tooMany("0.25"), tooMany("-4"), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, rec.durations())
}

func TestDo_BackoffIsCappedAtSixtySeconds(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany(""), tooMany(""), tooMany(""), tooMany(""), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv, func(cfg *config.Config) {
		cfg.InitialBackoff = 20 * time.Second
	})

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{20 * time.Second, 40 * time.Second, 60 * time.Second, 60 * time.Second}, rec.durations())
}

func TestDo_RetriesExhausted(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("1"), tooMany("1"), tooMany("1"), ok(fixtures.ListingPage("")))
	c, rec := newTestClient(t, srv, func(cfg *config.Config) {
		cfg.MaxRetries = 2
	})

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.Error(t, err)

	var rlErr *RateLimitExhaustedError
	require.True(t, errors.As(err, &rlErr), "got %T: %v", err, err)
	assert.Equal(t, 3, rlErr.Attempts)
	assert.Len(t, srv.ListingCalls(), 3)
	assert.Len(t, rec.durations(), 2)
}

func TestDo_DefaultRetryBudget(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	for i := 0; i < DefaultMaxRetries+1; i++ {
		srv.QueueListing(tooMany("1"))
	}
	c, rec := newTestClient(t, srv, func(cfg *config.Config) {
		cfg.MaxRetries = 0
	})

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)

	var rlErr *RateLimitExhaustedError
	require.ErrorAs(t, err, &rlErr)
	assert.Len(t, srv.ListingCalls(), DefaultMaxRetries+1)
	assert.Len(t, rec.durations(), DefaultMaxRetries)
}

func TestDo_NonRetryableStatus(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := mocks.NewRedditServer(t)
			srv.QueueListing(mocks.Response{Status: status, Body: `{"reason":"private"}`})
			c, rec := newTestClient(t, srv)

			_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, status, httpErr.StatusCode)
			assert.Equal(t, `{"reason":"private"}`, httpErr.Body)
			assert.Len(t, srv.ListingCalls(), 1)
			assert.Empty(t, rec.durations())
		})
	}
}

func TestDo_AuthenticationFailureIsNotRetried(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueToken(mocks.Response{Status: http.StatusUnauthorized, Body: "bad credentials"})
	c, _ := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Empty(t, srv.ListingCalls())
}

func TestDo_TokenRefreshedBetweenAttempts(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueToken(
		mocks.Response{Status: http.StatusOK, Body: `{"access_token":"first","expires_in":10}`},
		mocks.Response{Status: http.StatusOK, Body: `{"access_token":"second","expires_in":3600}`},
	)
	srv.QueueListing(tooMany("1"), ok(fixtures.ListingPage("")))
	c, _ := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.NoError(t, err)

	calls := srv.ListingCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Bearer first", calls[0].Authorization)
	assert.Equal(t, "Bearer second", calls[1].Authorization)
}

func TestDo_SleepCancellationStopsRetrying(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("30"), ok(fixtures.ListingPage("")))
	c, _ := newTestClient(t, srv)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, _, err := c.Do(context.Background(), http.MethodGet, c.ListingURL("golang", "new"), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, srv.ListingCalls(), 1)
}

func TestDo_HugeRetryAfterIsNotFloored(t *testing.T) {
	srv := mocks.NewRedditServer(t)
	srv.QueueListing(tooMany("99999999999"), ok("{}"))
	c, rec := newTestClient(t, srv)

	_, _, err := c.Do(context.Background(), http.MethodGet, srv.URL+"/r/technology/new", nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Duration(math.MaxInt64)}, rec.durations())
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"5", 5 * time.Second, true},
		{" 12 ", 12 * time.Second, true},
		{"1.5", 1500 * time.Millisecond, true},
		{"0", 0, true},
		{"99999999999", time.Duration(math.MaxInt64), true},
		{"1e300", time.Duration(math.MaxInt64), true},
		{"-1e300", time.Duration(math.MinInt64), true},
		{"", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"Fri, 31 Dec 1999 23:59:59 GMT", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.value)
		assert.Equal(t, tt.ok, ok, "value %q", tt.value)
		assert.Equal(t, tt.want, got, "value %q", tt.value)
	}
}

func TestWithParams(t *testing.T) {
	got, err := withParams("https://oauth.reddit.com/r/go/new?raw_json=1", url.Values{"limit": {"10"}, "after": {"t3_x"}})
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.reddit.com/r/go/new?after=t3_x&limit=10&raw_json=1", got)

	got, err = withParams("https://oauth.reddit.com/r/go/new", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.reddit.com/r/go/new", got)
}
