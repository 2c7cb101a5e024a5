package mocks

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"reddit-fetcher/testing/fixtures"
)

const TokenPath = "/api/v1/access_token"

// Response is one scripted reply.
type Response struct {
	Status int
	Body   string
	Header http.Header
}

// TokenCall records a request to the token endpoint.
type TokenCall struct {
	Authorization string
	UserAgent     string
	ContentType   string
	Form          url.Values
}

// ListingCall records a request to a listing endpoint.
type ListingCall struct {
	Path          string
	Query         url.Values
	Authorization string
	UserAgent     string
}

// RedditServer fakes the token and listing endpoints. Listing replies are
// served from a queue; once it is empty every listing request gets an empty
// page. Token replies default to a fresh token valid for an hour.
type RedditServer struct {
	*httptest.Server

	mu             sync.Mutex
	tokenResponses []Response
	listings       []Response
	tokenCalls     []TokenCall
	listingCalls   []ListingCall
}

func NewRedditServer(t testing.TB) *RedditServer {
	t.Helper()

	s := &RedditServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *RedditServer) TokenURL() string {
	return s.URL + TokenPath
}

// QueueToken scripts the next token endpoint replies.
func (s *RedditServer) QueueToken(resps ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenResponses = append(s.tokenResponses, resps...)
}

// QueueListing scripts the next listing endpoint replies.
func (s *RedditServer) QueueListing(resps ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, resps...)
}

// QueuePages queues 200 responses with the given bodies.
func (s *RedditServer) QueuePages(bodies ...string) {
	for _, body := range bodies {
		s.QueueListing(Response{Status: http.StatusOK, Body: body})
	}
}

func (s *RedditServer) TokenCalls() []TokenCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TokenCall(nil), s.tokenCalls...)
}

func (s *RedditServer) ListingCalls() []ListingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ListingCall(nil), s.listingCalls...)
}

func (s *RedditServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.URL.Path == TokenPath && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		s.tokenCalls = append(s.tokenCalls, TokenCall{
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.UserAgent(),
			ContentType:   r.Header.Get("Content-Type"),
			Form:          form,
		})

		resp := Response{
			Status: http.StatusOK,
			Body:   fmt.Sprintf(`{"access_token":"token-%d","token_type":"bearer","expires_in":3600,"scope":"*"}`, len(s.tokenCalls)),
		}
		if len(s.tokenResponses) > 0 {
			resp, s.tokenResponses = s.tokenResponses[0], s.tokenResponses[1:]
		}
		write(w, resp)

	case strings.HasPrefix(r.URL.Path, "/r/") && r.Method == http.MethodGet:
		s.listingCalls = append(s.listingCalls, ListingCall{
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.UserAgent(),
		})

		resp := Response{Status: http.StatusOK, Body: fixtures.ListingPage("")}
		if len(s.listings) > 0 {
			resp, s.listings = s.listings[0], s.listings[1:]
		}
		write(w, resp)

	default:
		http.NotFound(w, r)
	}
}

func write(w http.ResponseWriter, resp Response) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, resp.Body)
}
