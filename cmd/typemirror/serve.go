package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/broady/typemirror"
	"github.com/broady/typemirror/internal/oracle"
	"github.com/broady/typemirror/middleware"
)

type ServeCmd struct {
	ClasspathFlags

	Addr               string        `help:"Address to listen on." default:"localhost:8080" short:"a"`
	MaskInternalErrors bool          `help:"Replace internal error messages with a generic one." name:"mask-internal-errors"`
	AllowOrigin        string        `help:"Comma-separated origins allowed by CORS (empty disables CORS)." name:"allow-origin"`
	CORSMaxAge         time.Duration `help:"How long browsers may cache a CORS preflight." default:"10m" name:"cors-max-age"`
	MaxBodySize        int64         `help:"Maximum request body size in bytes." default:"1048576" name:"max-body-size"`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger := g.logger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := c.types(ctx, logger)
	if err != nil {
		return err
	}

	app := typemirror.NewApp().
		WithLogger(logger).
		WithMaxRequestBodySize(c.MaxBodySize).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger))
	if c.MaskInternalErrors {
		app = app.WithMaskInternalErrors()
	}
	if origins := middleware.ParseOrigins(c.AllowOrigin); len(origins) > 0 {
		app = app.WithMiddleware(middleware.CORS(&middleware.CORSConfig{
			AllowOrigins: origins,
			MaxAge:       c.CORSMaxAge,
		}))
	}
	oracle.New(ts).Register(app)

	for _, r := range app.Routes() {
		logger.Debug("route", slog.String("method", r.HTTPMethod), slog.String("path", r.Path))
	}

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("typemirror listening",
		slog.String("addr", "http://"+c.Addr),
		slog.Int("classes", ts.Provider().Classpath().Len()),
		slog.Int("routes", len(app.Routes())))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
