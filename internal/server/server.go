package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heihei0314/TLIPHelper/config"
	"github.com/heihei0314/TLIPHelper/internal/guide"
	"github.com/heihei0314/TLIPHelper/internal/retrieval"
	"github.com/heihei0314/TLIPHelper/internal/telemetry"
	"github.com/heihei0314/TLIPHelper/provider/azure"
	"github.com/heihei0314/TLIPHelper/session/inmemory"
)

// NewEngine wires the conversation engine from configuration: registry,
// model client, compactor, optional retrieval index and telemetry.
func NewEngine(cfg *config.Config, metrics *telemetry.Metrics, logger *log.Logger) *guide.Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	registry := guide.DefaultRegistry()
	llm := azure.NewClient(
		cfg.LLM.Azure.Endpoint,
		cfg.LLM.Azure.APIKey,
		cfg.LLM.Azure.APIVersion,
		cfg.LLM.Azure.Deployment,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.Timeout,
	)
	compactor := guide.NewModelCompactor(registry, llm, cfg.LLM.SummaryMaxTokens, cfg.LLM.SummaryTemperature, logger)

	var retriever guide.Retriever
	if cfg.Retrieval.Enabled {
		idx, err := retrieval.BuildIndex(cfg.Retrieval.DocsDir, cfg.Retrieval.TopK, cfg.Retrieval.SnippetLimit, logger)
		if err != nil {
			// Retrieval is best effort; run without reference context.
			logger.Printf("reference index unavailable, continuing without retrieval: %v", err)
		} else {
			logger.Printf("reference index ready with %d chunks", idx.Len())
			retriever = idx
		}
	}

	return guide.NewOrchestrator(registry, llm, compactor, retriever, metrics, logger, guide.Options{
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.LLM.MaxRetries,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
}

// Run starts the HTTP server and blocks until it stops.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
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
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New(prometheus.DefaultRegisterer)
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	engine := NewEngine(cfg, metrics, nil)
	ch := &ChatHandler{
		Store:  inmemory.NewStore(),
		Engine: engine,
		TTL:    cfg.Session.TTL,
	}
	ch.Register(e.Group("/api"))

	return e.Start(cfg.Server.Address)
}
