package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/internal/cache"
	"github.com/itsjustRohitch/ResourceScout/internal/extract"
	"github.com/itsjustRohitch/ResourceScout/internal/retriever"
	"github.com/itsjustRohitch/ResourceScout/internal/scout"
	"github.com/itsjustRohitch/ResourceScout/internal/session"
	"github.com/itsjustRohitch/ResourceScout/internal/telemetry"
	"github.com/itsjustRohitch/ResourceScout/provider"
)

// Run wires all dependencies and serves the API until the listener fails.
func Run(cfg *config.Config) error {
	ctx := context.Background()
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)

	metrics := telemetry.New(nil)

	llm, err := provider.New(cfg.LLM)
	if err != nil {
		return err
	}
	resultCache, err := cache.New(ctx, cfg.Cache, log.New(log.Writer(), "[CACHE] ", log.LstdFlags))
	if err != nil {
		return err
	}
	rtr, err := retriever.NewFromConfig(cfg.Search, metrics, log.New(log.Writer(), "[RETRIEVE] ", log.LstdFlags))
	if err != nil {
		return err
	}
	engine := scout.NewEngine(llm, rtr, resultCache, metrics, log.New(log.Writer(), "[SCOUT] ", log.LstdFlags))

	store := session.NewInMemoryStore()
	store.StartJanitor(ctx, cfg.Server.SessionTTL/2)

	h := &Handler{
		Config:    cfg,
		Engine:    engine,
		Store:     store,
		Extractor: extract.New(llm, cfg.Server.MaxUploadSize, metrics, log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags)),
		Secret:    []byte(cfg.Server.JWTSecret),
		Logger:    baseLogger,
	}

	e := newEcho(baseLogger, metrics, cfg.Telemetry.Enabled)
	h.Register(e.Group("/api"))

	baseLogger.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}

// newEcho builds the echo instance with the shared middleware stack.
func newEcho(baseLogger *log.Logger, metrics *telemetry.Metrics, exposeMetrics bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "X-Api-Key"},
		AllowCredentials: true,
	}))

	if metrics != nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				start := time.Now()
				err := next(c)
				route := c.Path()
				status := c.Response().Status
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
				metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
				metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
				return err
			}
		})
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if exposeMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	return e
}
