// Package lab implements the toy API served by the lab server: a token
// pinned to the caller's User-Agent, a per-client fixed-window rate limit
// and a handful of canned posts. None of it is meant to be secure.
package lab

import (
	"embed"
	"fmt"
	"io/fs"

	"reddit-fetcher/internal/models"
)

//go:embed static
var staticFiles embed.FS

// StaticFS holds index.html and app.js.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ToyHash folds s into 32 bits as acc = acc*31 + codepoint and returns it
// as lowercase hex.
func ToyHash(s string) string {
	var acc uint32
	for _, ch := range s {
		acc = (acc << 5) - acc + uint32(ch)
	}
	return fmt.Sprintf("%x", acc)
}

// IssueToken binds a token to the client's User-Agent.
func IssueToken(userAgent, secret string) string {
	return ToyHash(userAgent + ":" + secret)
}

var MockPosts = []models.LabPost{
	{ID: "t1", Title: "Tech A", Subreddit: "technology"},
	{ID: "t2", Title: "Tech B", Subreddit: "technology"},
	{ID: "t3", Title: "Tech C", Subreddit: "technology"},
	{ID: "t4", Title: "Tech D", Subreddit: "technology"},
	{ID: "t5", Title: "Tech E", Subreddit: "technology"},
}

// FilterPosts returns up to limit posts from subreddit in a listing shape.
func FilterPosts(posts []models.LabPost, subreddit string, limit int) models.LabListing {
	var listing models.LabListing
	listing.Data.Children = make([]models.LabChild, 0, len(posts))
	for _, p := range posts {
		if len(listing.Data.Children) >= limit {
			break
		}
		if p.Subreddit == subreddit {
			listing.Data.Children = append(listing.Data.Children, models.LabChild{Data: p})
		}
	}
	return listing
}
