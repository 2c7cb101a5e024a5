package models

// HTTPError represents an HTTP error response
// swagger:model HTTPError
type HTTPError struct {
	// HTTP status code
	Code int `json:"code"`
	// Error message
	Message string `json:"message"`
}

// LabError is the error body returned by the lab API
// swagger:model LabError
type LabError struct {
	// Machine readable error code (rate_limited, missing_token, invalid_token)
	Error string `json:"error"`
}

// LabToken is returned by the lab token endpoint
// swagger:model LabToken
type LabToken struct {
	// Bearer token pinned to the caller's User-Agent
	Token string `json:"token"`
}

// LabPost is a canned post served by the lab server
// swagger:model LabPost
type LabPost struct {
	// Post ID
	ID string `json:"id"`
	// Post title
	Title string `json:"title"`
	// Subreddit the post belongs to
	Subreddit string `json:"subreddit"`
}

// LabChild wraps a post the way Reddit listings do
// swagger:model LabChild
type LabChild struct {
	Data LabPost `json:"data"`
}

// LabListing mirrors the shape of a Reddit listing response
// swagger:model LabListing
type LabListing struct {
	Data struct {
		// Posts wrapped as listing children
		Children []LabChild `json:"children"`
	} `json:"data"`
}
