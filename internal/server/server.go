// Package server builds the echo instance shared by every domain module and
// runs it under the fx lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

var Module = fx.Module("server",
	fx.Provide(NewEcho),
	fx.Invoke(StartServer),
)

const (
	// Mutation batches arrive as one JSONL body.
	batchBodyLimit   = "64M"
	defaultBodyLimit = "1M"
	batchPath        = "/api/graph/mutations"
)

// NewEcho creates the echo instance with error mapping, request ids, body
// limits, access logging and panic recovery.
func NewEcho(cfg *config.Config, log *slog.Logger) *echo.Echo {
	log = log.With(logger.Scope("http"))

	e := echo.New()
	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(log)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.RequestID(),
		bodyLimits(),
		accessLog(log),
		middleware.RecoverWithConfig(middleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error("panic recovered",
					logger.Error(err),
					slog.String("path", c.Path()),
					slog.String("stack", string(stack)),
				)
				return err
			},
		}),
	)
	return e
}

// bodyLimits allows large bodies only on the batch endpoint.
func bodyLimits() echo.MiddlewareFunc {
	batch := middleware.BodyLimit(batchBodyLimit)
	other := middleware.BodyLimit(defaultBodyLimit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		batchNext, otherNext := batch(next), other(next)
		return func(c echo.Context) error {
			if c.Request().URL.Path == batchPath {
				return batchNext(c)
			}
			return otherNext(c)
		}
	}
}

func accessLog(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			requestsTotal.WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).Inc()
			requestDuration.WithLabelValues(v.Method, route).Observe(v.Latency.Seconds())

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			switch {
			case v.Error != nil || v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
				attrs = append(attrs, logger.Error(v.Error))
			case isProbe(c):
				level = slog.LevelDebug
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

func isProbe(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/health", "/healthz", "/ready", "/metrics":
		return true
	}
	return false
}

// StartServer binds the listener during OnStart so an occupied port fails
// startup, then serves in the background until OnStop.
func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, log *slog.Logger) {
	log = log.With(logger.Scope("server"))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.ServerAddress, strconv.Itoa(cfg.ServerPort)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", srv.Addr)
			if err != nil {
				return err
			}
			e.Listener = ln
			log.Info("listening",
				slog.String("address", ln.Addr().String()),
				slog.String("environment", cfg.Environment),
			)

			go func() {
				if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", logger.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			timeout := cfg.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Info("draining connections", slog.Duration("timeout", timeout))
			return e.Shutdown(ctx)
		},
	})
}
