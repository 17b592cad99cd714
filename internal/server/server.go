// Package server serves live previews and exports over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/pdf"
	"github.com/roboco-io/pubrender/internal/store"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Debug          bool
		Store          store.Store
		Logger         zerolog.Logger
		// Profile is the default render profile; query parameters override it.
		Profile render.Profile
		PDF     pdf.Options
		// Now stamps generated documents. Defaults to time.Now.
		Now func() time.Time
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		hub  *hub
	}
)

var _ Server = (*server)(nil)

// New builds a server. The store is required.
func New(opts *Options) Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
		hub:  newHub(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Debug = s.opts.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	if !s.opts.Debug {
		s.app.Use(middleware.Recover())
	}
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)

	s.app.GET("/", home)

	h := &handlers{opts: s.opts, hub: s.hub}
	pubs := s.app.Group("/publications/:id")
	pubs.GET("/preview", h.preview)
	pubs.GET("/preview/document", h.previewDocument)
	pubs.GET("/export.html", h.exportHTML)
	pubs.GET("/export.pdf", h.exportPDF)
	pubs.POST("/validate", h.validate)
	pubs.GET("/live", h.live)
	s.app.PUT("/publications/:id", h.save)
}

func (s *server) Start() error {
	s.opts.Logger.Info().Str("address", s.opts.Address).Msg("preview server listening")
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes live preview connections and shuts the server down.
func (s *server) Stop(ctx context.Context) error {
	s.hub.close()
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pubrender preview server")
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			req, res := ctx.Request(), ctx.Response()
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
