// internal/client/reddit_client.go
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"reddit-fetcher/internal/config"
	"reddit-fetcher/internal/logging"
	"reddit-fetcher/internal/parser"
	"reddit-fetcher/pkg/utils"
)

const (
	DefaultMaxRetries     = 5
	DefaultInitialBackoff = 2 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// RedditClient talks to Reddit's OAuth API with application-only
// credentials. It caches one access token and is not safe for concurrent
// use; run one client per concurrent stream.
type RedditClient struct {
	httpClient     *http.Client
	tokenClient    *http.Client
	tokenAuth      *tokenTransport
	oauth          *clientcredentials.Config
	userAgent      string
	baseURL        *url.URL
	maxRetries     int
	initialBackoff time.Duration
	limiter        *rate.Limiter
	parser         parser.ParserInterface
	logger         *slog.Logger

	token accessToken

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRedditClient(cfg *config.Config, logger *slog.Logger) (*RedditClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client ID and client secret are required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = config.DefaultTokenURL
	}
	rawBaseURL := cfg.APIBaseURL
	if rawBaseURL == "" {
		rawBaseURL = config.DefaultAPIBaseURL
	}
	baseURL, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %s: %w", rawBaseURL, err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = DefaultInitialBackoff
	}

	transport, err := utils.NewTransport(utils.TransportConfig{
		ProxyURLs:   cfg.ProxyURLs,
		Fingerprint: cfg.TLSFingerprint,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP transport: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), burst)
	}

	tokenAuth := &tokenTransport{
		base:         &utils.UserAgentTransport{Base: transport, UserAgent: userAgent},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}

	return &RedditClient{
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient:     &http.Client{Transport: transport, Timeout: timeout},
		tokenClient:    &http.Client{Transport: tokenAuth, Timeout: timeout},
		tokenAuth:      tokenAuth,
		userAgent:      userAgent,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		limiter:        limiter,
		parser:         parser.NewRedditParser(),
		logger:         logger,
		now:            time.Now,
		sleep:          sleepContext,
	}, nil
}

// ListingURL returns the endpoint for one subreddit listing.
func (r *RedditClient) ListingURL(subreddit string, listing string) string {
	return r.baseURL.JoinPath("r", subreddit, listing).String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
