// internal/router/router.go
package router

import (
	"reddit-fetcher/internal/handler/http"
	"reddit-fetcher/internal/lab"

	"github.com/labstack/echo/v4"
)

func NewRouter(e *echo.Echo, h *http.LabHandler, limiter *lab.FixedWindowLimiter) {
	static := lab.StaticFS()
	e.FileFS("/", "index.html", static)
	e.StaticFS("/static", static)

	api := e.Group("/api", http.RateLimit(limiter))
	api.POST("/token", h.IssueToken)
	api.GET("/posts", h.ListPosts)
}
