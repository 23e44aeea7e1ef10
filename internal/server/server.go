package server

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/atikulmunna/weblog/internal/aggregator"
	"github.com/atikulmunna/weblog/internal/metrics"
	"github.com/atikulmunna/weblog/internal/model"
	"github.com/atikulmunna/weblog/internal/stream"
)

// Dataset is the analysed input the server exposes.
type Dataset struct {
	Files       []string
	Batch       *stream.Batch
	Accumulator *aggregator.Accumulator
	TopN        int
	Preview     int
}

// Server holds the Gin engine and the dataset it reports on.
type Server struct {
	engine  *gin.Engine
	data    Dataset
	metrics *metrics.Metrics
	log     zerolog.Logger
	started time.Time
}

// New creates the HTTP server for a dataset.
func New(data Dataset, m *metrics.Metrics, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:  engine,
		data:    data,
		metrics: m,
		log:     log,
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).Truncate(time.Second).String(),
			"files":   len(s.data.Files),
			"records": s.data.Accumulator.Len(),
		})
	})

	api := s.engine.Group("/api")
	api.GET("/report", s.handleReport)
	api.GET("/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.data.Batch.Summary(s.data.Preview))
	})
	api.GET("/invalid", s.handleInvalid)
	api.GET("/content-size", s.handleContentSize)
	api.GET("/response-codes", func(c *gin.Context) {
		c.JSON(http.StatusOK, aggregator.CodeList(s.data.Accumulator.ResponseCodes()))
	})
	api.GET("/top-error-endpoints", func(c *gin.Context) {
		n, ok := intQuery(c, "n", s.data.TopN)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.data.Accumulator.TopErrorEndpoints(n))
	})
	api.GET("/daily", func(c *gin.Context) {
		c.JSON(http.StatusOK, aggregator.DailyList(s.data.Accumulator.DailyResponseCodes()))
	})

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/allocs", gin.WrapH(pprof.Handler("allocs")))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func (s *Server) handleReport(c *gin.Context) {
	n, ok := intQuery(c, "top", s.data.TopN)
	if !ok {
		return
	}
	// An empty dataset still has a meaningful report; content_size is omitted.
	rep, _ := aggregator.NewReport(s.data.Batch.Summary(s.data.Preview), s.data.Accumulator, n)
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleContentSize(c *gin.Context) {
	stats, err := s.data.Accumulator.ContentSize()
	if errors.Is(err, model.ErrEmptyDataset) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleInvalid(c *gin.Context) {
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", s.data.Preview)
	if !ok {
		return
	}

	all := s.data.Batch.Invalid
	offset = min(offset, len(all))
	limit = min(limit, len(all)-offset)
	c.JSON(http.StatusOK, gin.H{
		"total": len(all),
		"lines": all[offset : offset+limit],
	})
}

// intQuery reads a non-negative integer query parameter, answering 400 when malformed.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + ": " + raw})
		return 0, false
	}
	return n, true
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
