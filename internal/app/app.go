// internal/app/app.go
package app

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"reddit-fetcher/internal/config"
	handler "reddit-fetcher/internal/handler/http"
	"reddit-fetcher/internal/lab"
	"reddit-fetcher/internal/router"
)

// App is the lab server: a local toy API for experimenting with tokens and
// rate limits.
type App struct {
	Config  *config.LabConfig
	Echo    *echo.Echo
	Limiter *lab.FixedWindowLimiter
	Logger  *slog.Logger
}

func Initialize(cfg *config.LabConfig, logger *slog.Logger) *App {
	limiter := lab.NewFixedWindowLimiter(cfg.RateLimit, cfg.RateWindow)
	labHandler := handler.NewLabHandler(cfg.Secret, lab.MockPosts)

	e := echo.New()
	e.HideBanner = true
	// Clients are told apart by socket peer; forwarding headers are not trusted.
	e.IPExtractor = echo.ExtractIPDirect()
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				slog.String("id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	router.NewRouter(e, labHandler, limiter)

	return &App{
		Config:  cfg,
		Echo:    e,
		Limiter: limiter,
		Logger:  logger,
	}
}

func (a *App) Start() error {
	port := a.Config.ServerPort
	if port == "" {
		port = "5000"
	}
	err := a.Echo.Start("127.0.0.1:" + port)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
