package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	// tokenExpirySkew retires a token early so it does not lapse while a
	// request is in flight.
	tokenExpirySkew      = 30 * time.Second
	defaultTokenLifetime = 3600 * time.Second
)

type accessToken struct {
	value     string
	expiresAt time.Time
}

func (t accessToken) valid(now time.Time) bool {
	return t.value != "" && now.Before(t.expiresAt.Add(-tokenExpirySkew))
}

// tokenTransport carries the token exchange. It sends the client
// credentials as plain Basic auth (x/oauth2 form-escapes them first) and
// keeps the last response status and body for ensureToken.
type tokenTransport struct {
	base         http.RoundTripper
	clientID     string
	clientSecret string

	lastStatus int
	lastBody   []byte
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastStatus, t.lastBody = 0, nil

	reqCopy := req.Clone(req.Context())
	reqCopy.SetBasicAuth(t.clientID, t.clientSecret)

	resp, err := t.base.RoundTrip(reqCopy)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	t.lastStatus, t.lastBody = resp.StatusCode, body
	return resp, nil
}

// ensureToken returns immediately while the cached token is valid and
// otherwise performs a client-credentials exchange.
func (r *RedditClient) ensureToken(ctx context.Context) error {
	if r.token.valid(r.now()) {
		return nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.tokenClient)
	tok, err := r.oauth.Token(ctx)
	if err != nil {
		return authenticationError(err)
	}
	if status := r.tokenAuth.lastStatus; status != http.StatusOK {
		return &AuthenticationError{StatusCode: status, Body: string(r.tokenAuth.lastBody)}
	}
	if tok.AccessToken == "" {
		return &AuthenticationError{Err: errors.New("no access_token in OAuth response")}
	}

	now := r.now()
	var expiresAt time.Time
	if lifetime, ok := tokenLifetime(tok); ok {
		expiresAt = now.Add(lifetime)
	} else if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	} else {
		expiresAt = now.Add(defaultTokenLifetime)
	}
	r.token = accessToken{value: tok.AccessToken, expiresAt: expiresAt}

	r.logger.Debug("Obtained access token", slog.Time("expires_at", expiresAt))
	return nil
}

// tokenLifetime reads expires_in from the raw token response. A present
// zero is reported as a zero lifetime, which expires the token at once.
func tokenLifetime(tok *oauth2.Token) (time.Duration, bool) {
	var seconds float64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case int64:
		seconds = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		seconds = f
	default:
		return 0, false
	}
	return secondsToDuration(seconds), true
}

func authenticationError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr := &AuthenticationError{Body: string(retrieveErr.Body)}
		if retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return authErr
	}
	return &AuthenticationError{Err: err}
}
