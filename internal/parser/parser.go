// internal/parser/parser.go
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"reddit-fetcher/internal/models"
)

type RedditParser struct{}

func NewRedditParser() *RedditParser {
	return &RedditParser{}
}

// ParseListing extracts data.children[].data and data.after from a listing
// body. Missing objects are treated as empty rather than as errors; a child
// without a data object yields an empty post.
func (p *RedditParser) ParseListing(ctx context.Context, data json.RawMessage) (models.Page, error) {
	var listing struct {
		Data struct {
			Children []struct {
				Kind string      `json:"kind"`
				Data models.Post `json:"data"`
			} `json:"children"`
			After string `json:"after"`
		} `json:"data"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&listing); err != nil {
		return models.Page{}, &ParseError{Err: fmt.Errorf("parse listing JSON: %w", err)}
	}

	page := models.Page{
		Posts: make([]models.Post, 0, len(listing.Data.Children)),
		After: listing.Data.After,
	}
	for _, child := range listing.Data.Children {
		post := child.Data
		if post == nil {
			post = models.Post{}
		}
		page.Posts = append(page.Posts, post)
	}

	return page, nil
}

// ParseError reports a response body that is not a listing document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
