package client

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reddit-fetcher/internal/config"
	"reddit-fetcher/internal/models"
	"reddit-fetcher/testing/mocks"
)

// sleepRecorder replaces real sleeping so retry tests run instantly.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return nil
}

func (s *sleepRecorder) durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

func newTestClient(t *testing.T, srv *mocks.RedditServer, mutate ...func(*config.Config)) (*RedditClient, *sleepRecorder) {
	t.Helper()

	cfg := &config.Config{
		ClientID:       "my-client",
		ClientSecret:   "my-secret",
		UserAgent:      "test-agent/1.0",
		TokenURL:       srv.TokenURL(),
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
	}
	for _, m := range mutate {
		m(cfg)
	}

	c, err := NewRedditClient(cfg, nil)
	require.NoError(t, err)

	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

func collect(seq iter.Seq2[models.Post, error]) ([]models.Post, error) {
	var posts []models.Post
	for post, err := range seq {
		if err != nil {
			return posts, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		id, _ := p["id"].(string)
		out = append(out, id)
	}
	return out
}

func TestNewRedditClient_RequiresCredentials(t *testing.T) {
	_, err := NewRedditClient(&config.Config{ClientID: "id"}, nil)
	require.Error(t, err)

	_, err = NewRedditClient(nil, nil)
	require.Error(t, err)
}

func TestNewRedditClient_Defaults(t *testing.T) {
	c, err := NewRedditClient(&config.Config{ClientID: "id", ClientSecret: "secret"}, nil)
	require.NoError(t, err)

	require.Equal(t, config.DefaultUserAgent, c.userAgent)
	require.Equal(t, config.DefaultTokenURL, c.oauth.TokenURL)
	require.Equal(t, DefaultMaxRetries, c.maxRetries)
	require.Equal(t, DefaultInitialBackoff, c.initialBackoff)
	require.Equal(t, DefaultRequestTimeout, c.httpClient.Timeout)
	require.Nil(t, c.limiter)
	require.Equal(t, "https://oauth.reddit.com/r/technology/top", c.ListingURL("technology", "top"))
}

func TestNewRedditClient_RejectsBadTransportSettings(t *testing.T) {
	_, err := NewRedditClient(&config.Config{
		ClientID:       "id",
		ClientSecret:   "secret",
		TLSFingerprint: "netscape",
	}, nil)
	require.Error(t, err)
}

func TestNewRedditClient_Pacing(t *testing.T) {
	c, err := NewRedditClient(&config.Config{
		ClientID:          "id",
		ClientSecret:      "secret",
		RequestsPerMinute: 120,
		RateLimitBurst:    4,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.limiter)
	require.InDelta(t, 2.0, float64(c.limiter.Limit()), 1e-9)
	require.Equal(t, 4, c.limiter.Burst())
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
