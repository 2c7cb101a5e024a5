// internal/handler/http/lab_handler.go
package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"reddit-fetcher/internal/lab"
	"reddit-fetcher/internal/models"
)

const (
	defaultPostsLimit = 25
	maxPostsLimit     = 100
	defaultSubreddit  = "technology"
)

type LabHandler struct {
	secret string
	posts  []models.LabPost
}

func NewLabHandler(secret string, posts []models.LabPost) *LabHandler {
	return &LabHandler{secret: secret, posts: posts}
}

// IssueToken godoc
// @Summary Issue a lab token
// @Description Returns a toy bearer token bound to the caller's User-Agent
// @Tags lab
// @Produce json
// @Success 200 {object} models.LabToken
// @Failure 429 {object} models.LabError
// @Router /api/token [post]
func (h *LabHandler) IssueToken(c echo.Context) error {
	userAgent := c.Request().UserAgent()
	return c.JSON(http.StatusOK, models.LabToken{Token: lab.IssueToken(userAgent, h.secret)})
}

// ListPosts godoc
// @Summary List mock posts
// @Description Returns canned posts in a Reddit listing shape. The bearer token must match the caller's User-Agent.
// @Tags lab
// @Produce json
// @Param subreddit query string false "Subreddit name" default(technology)
// @Param limit query int false "Maximum number of posts (1-100)" default(25)
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.LabListing
// @Failure 400 {object} models.HTTPError
// @Failure 401 {object} models.LabError
// @Failure 403 {object} models.LabError
// @Failure 429 {object} models.LabError
// @Router /api/posts [get]
func (h *LabHandler) ListPosts(c echo.Context) error {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.LabError{Error: "missing_token"})
	}
	if token != lab.IssueToken(c.Request().UserAgent(), h.secret) {
		return c.JSON(http.StatusForbidden, models.LabError{Error: "invalid_token"})
	}

	subreddit := c.QueryParam("subreddit")
	if subreddit == "" {
		subreddit = defaultSubreddit
	}

	limit := defaultPostsLimit
	if l := c.QueryParam("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.HTTPError{Code: http.StatusBadRequest, Message: "invalid `limit`"})
		}
		limit = max(1, min(maxPostsLimit, v))
	}

	return c.JSON(http.StatusOK, lab.FilterPosts(h.posts, subreddit, limit))
}

// RateLimit rejects callers over the limiter's budget with 429 and a
// Retry-After header. Callers are keyed by client IP.
func RateLimit(limiter *lab.FixedWindowLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := limiter.Allow(c.RealIP())
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, models.LabError{Error: "rate_limited"})
			}
			return next(c)
		}
	}
}
