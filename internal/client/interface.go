// internal/client/interface.go
package client

import (
	"context"
	"iter"
	"net/http"
	"net/url"

	"reddit-fetcher/internal/models"
)

type RedditClientInterface interface {
	Do(ctx context.Context, method, rawURL string, params url.Values) (*http.Response, []byte, error)
	ListSubredditPosts(ctx context.Context, req ListingRequest) iter.Seq2[models.Post, error]
}
