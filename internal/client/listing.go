package client

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"reddit-fetcher/internal/models"
)

const (
	// MaxPageSize is the largest page Reddit serves.
	MaxPageSize = 100
	// DefaultPageSize is used when a request leaves PageSize unset.
	DefaultPageSize = MaxPageSize
)

type ListingRequest struct {
	Subreddit string
	Listing   models.Listing
	// PageSize is clamped to MaxPageSize.
	PageSize int
	// MaxItems bounds the number of posts yielded.
	MaxItems int
	// TimeWindow is only sent for the top listing.
	TimeWindow models.TimeWindow
}

func (req ListingRequest) pageParams(after string) url.Values {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(min(pageSize, MaxPageSize)))
	if after != "" {
		params.Set("after", after)
	}
	if req.Listing == models.ListingTop && req.TimeWindow != "" {
		params.Set("t", string(req.TimeWindow))
	}
	return params
}

// ListSubredditPosts returns a lazy sequence over a subreddit listing. Pages
// are requested one at a time as the caller ranges; breaking out of the loop
// stops the fetch with no further requests. The sequence ends after MaxItems
// posts, on an empty page, or when the server reports no next cursor. A
// failure is yielded once as a nil post with the error and ends the
// sequence. Every range over the result starts again from the first page.
//
// An unsupported listing is a programming error and panics.
func (r *RedditClient) ListSubredditPosts(ctx context.Context, req ListingRequest) iter.Seq2[models.Post, error] {
	if !req.Listing.Valid() {
		panic(fmt.Sprintf("client: unsupported listing %q", req.Listing))
	}
	endpoint := r.ListingURL(req.Subreddit, string(req.Listing))

	return func(yield func(models.Post, error) bool) {
		logger := r.logger.With(
			slog.String("fetch_id", uuid.NewString()),
			slog.String("subreddit", req.Subreddit),
			slog.String("listing", string(req.Listing)),
		)

		fetched := 0
		after := ""
		for page := 1; fetched < req.MaxItems; page++ {
			_, body, err := r.Do(ctx, http.MethodGet, endpoint, req.pageParams(after))
			if err != nil {
				yield(nil, err)
				return
			}

			result, err := r.parser.ParseListing(ctx, body)
			if err != nil {
				yield(nil, err)
				return
			}

			logger.Debug("Fetched page",
				slog.Int("page", page),
				slog.String("after", after),
				slog.Int("count", len(result.Posts)),
			)

			if len(result.Posts) == 0 {
				return
			}

			for _, post := range result.Posts {
				if !yield(post, nil) {
					return
				}
				fetched++
				if fetched >= req.MaxItems {
					logger.Debug("Reached max items", slog.Int("fetched", fetched))
					return
				}
			}

			if result.After == "" {
				return
			}
			after = result.After
		}
	}
}
