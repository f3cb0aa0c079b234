// Package server is the warden backend: the notification webhook, the
// quick-auth endpoint, the cron reminder trigger, and the mini-app
// manifest.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/notify"
)

const requestIDKey = "request_id"

// TokenVerifier validates a quick-auth JWT and returns the fid.
type TokenVerifier interface {
	Verify(ctx context.Context, token, audience string) (int64, error)
}

// Reminder runs one notification round (satisfied by *notify.Notifier).
type Reminder interface {
	Remind(ctx context.Context) (*notify.Outcome, error)
}

// Server wires the HTTP surface together.
type Server struct {
	e        *echo.Echo
	srv      *http.Server
	cfg      config.ServerConfig
	store    notify.Store
	reminder Reminder
	auth     TokenVerifier
	log      *slog.Logger
}

// New creates a server. log may be nil.
func New(cfg config.ServerConfig, store notify.Store, reminder Reminder, auth TokenVerifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		e:        echo.New(),
		cfg:      cfg,
		store:    store,
		reminder: reminder,
		auth:     auth,
		log:      log,
	}
	s.srv = &http.Server{Addr: cfg.Addr, Handler: s.e}
	s.e.Use(s.requestLogger)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.e.GET("/healthz", s.handleHealthz)
	s.e.POST("/api/webhook", s.handleWebhook)
	s.e.GET("/api/auth", s.handleAuth)
	s.e.GET("/api/cron/remind", s.handleCronRemind)
	s.e.GET("/.well-known/farcaster.json", s.handleManifest)
}

// requestLogger tags every request with an id and logs method, path,
// status and latency through slog.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Response().Header().Set(echo.HeaderXRequestID, id)

		start := time.Now()
		err := next(c)

		status := 0
		if res, uerr := echo.UnwrapResponse(c.Response()); uerr == nil {
			status = res.Status
		}
		s.log.Info("request",
			"id", id,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}

// Handler exposes the routed handler (for tests and custom servers).
func (s *Server) Handler() *echo.Echo { return s.e }

// Start serves on the configured address until the listener fails.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
