package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxBackoff   = 60 * time.Second
	minRetryWait = time.Second
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetry
	outcomeFatal
)

// outcome is the executor's verdict on one attempt.
type outcome struct {
	kind outcomeKind
	wait time.Duration
	err  error
}

// retryState tracks 429s across the attempts of a single request.
type retryState struct {
	attempts   int
	maxRetries int
	backoff    *backoff.ExponentialBackOff
}

func (r *RedditClient) newRetryState() *retryState {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return &retryState{maxRetries: r.maxRetries, backoff: b}
}

// evaluate classifies a response. The backoff counter advances on every 429
// whether or not the server supplied Retry-After.
func (s *retryState) evaluate(rawURL string, resp *http.Response, body []byte) outcome {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		s.attempts++
		if s.attempts > s.maxRetries {
			return outcome{kind: outcomeFatal, err: &RateLimitExhaustedError{URL: rawURL, Attempts: s.attempts}}
		}
		computed := s.backoff.NextBackOff()
		wait, ok := parseRetryAfter(resp.Header.Get("Retry-After"))
		if !ok {
			wait = computed
		}
		return outcome{kind: outcomeRetry, wait: max(minRetryWait, wait)}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return outcome{kind: outcomeSuccess}
	default:
		return outcome{kind: outcomeFatal, err: &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Body: string(body)}}
	}
}

// parseRetryAfter reads a delay in (possibly fractional) seconds. Anything
// else, including HTTP dates, is reported as absent.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	return secondsToDuration(seconds), true
}

// secondsToDuration converts seconds to a Duration, saturating instead of
// overflowing.
func secondsToDuration(seconds float64) time.Duration {
	ns := seconds * float64(time.Second)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

// Do performs one authenticated request, sleeping and retrying while the
// server answers 429. The returned response body has already been read and
// closed; it is returned both as bytes and as a re-readable resp.Body.
func (r *RedditClient) Do(ctx context.Context, method, rawURL string, params url.Values) (*http.Response, []byte, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, nil, err
	}

	state := r.newRetryState()
	for {
		resp, body, err := r.send(ctx, method, target)
		if err != nil {
			return nil, nil, err
		}

		out := state.evaluate(target, resp, body)
		switch out.kind {
		case outcomeSuccess:
			return resp, body, nil
		case outcomeFatal:
			return nil, nil, out.err
		}

		r.logger.Warn("Rate limited, backing off",
			slog.String("url", target),
			slog.Int("attempt", state.attempts),
			slog.Int("max_retries", state.maxRetries),
			slog.Duration("wait", out.wait),
		)
		if err := r.sleep(ctx, out.wait); err != nil {
			return nil, nil, err
		}
	}
}

func (r *RedditClient) send(ctx context.Context, method, target string) (*http.Response, []byte, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if err := r.ensureToken(ctx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token.value)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if remaining := resp.Header.Get("X-Ratelimit-Remaining"); remaining != "" {
		r.logger.Debug("Rate limit status",
			slog.String("remaining", remaining),
			slog.String("reset", resp.Header.Get("X-Ratelimit-Reset")),
		)
	}

	return resp, body, nil
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %s: %w", rawURL, err)
	}
	query := u.Query()
	for key, values := range params {
		query[key] = values
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
