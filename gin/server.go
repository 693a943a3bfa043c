// Package gin provides the HTTP API transport for sitescope services.
// It binds JSON request bodies onto the domain request structs, invokes
// the wrapped services and serializes their result structs back out; no
// crawl or audit semantics live here.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/sitescope"
	"github.com/gin-gonic/gin"
)

// Server exposes the crawl and audit services over HTTP. Runs is optional;
// without it the archive endpoints respond 404. Config supplies the
// defaults substituted into request fields the JSON body leaves absent.
type Server struct {
	Crawler sitescope.CrawlService
	Auditor sitescope.AuditService
	Runs    sitescope.RunService
	Config  sitescope.Config
	Logger  *slog.Logger

	router *gin.Engine
	server *http.Server
}

// NewServer builds the router. The logger is used for request logging and
// panic recovery output.
func NewServer(crawler sitescope.CrawlService, auditor sitescope.AuditService, runs sitescope.RunService, cfg sitescope.Config, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		Crawler: crawler,
		Auditor: auditor,
		Runs:    runs,
		Config:  cfg,
		Logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.POST("/crawl", s.handleCrawl)
	api.POST("/audit", s.handleAudit)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.DELETE("/runs/:id", s.handleDeleteRun)

	s.router = router
	return s
}

// Handler returns the underlying http.Handler for testing and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// crawlBody mirrors sitescope.CrawlRequest with a nullable RespectRobots,
// so a body that omits the field takes the configured default instead of
// binding as an explicit false.
type crawlBody struct {
	StartURL          string `json:"startUrl"`
	MaxDepth          int    `json:"maxDepth"`
	MaxPages          int    `json:"maxPages"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
	RespectRobots     *bool  `json:"respectRobots"`
	UserAgent         string `json:"userAgent"`
}

func (s *Server) handleCrawl(c *gin.Context) {
	var body crawlBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req := sitescope.CrawlRequest{
		StartURL:          body.StartURL,
		MaxDepth:          body.MaxDepth,
		MaxPages:          body.MaxPages,
		IncludeSubdomains: body.IncludeSubdomains,
		RespectRobots:     s.Config.RespectRobots,
		UserAgent:         body.UserAgent,
	}
	if body.RespectRobots != nil {
		req.RespectRobots = *body.RespectRobots
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = s.Config.MaxDepth
	}
	if req.MaxPages == 0 {
		req.MaxPages = s.Config.MaxPages
	}
	if req.UserAgent == "" {
		req.UserAgent = s.Config.UserAgent
	}

	res, err := s.Crawler.Crawl(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleAudit(c *gin.Context) {
	var req sitescope.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = s.Config.UserAgent
	}

	results, err := s.Auditor.Audit(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run archive not configured"})
		return
	}

	var filter sitescope.RunFilter
	if kind := c.Query("kind"); kind != "" {
		k := sitescope.RunKind(kind)
		filter.Kind = &k
	}
	if startURL := c.Query("startUrl"); startURL != "" {
		filter.StartURL = &startURL
	}

	runs, err := s.Runs.FindRuns(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run archive not configured"})
		return
	}

	run, err := s.Runs.FindRunByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleDeleteRun(c *gin.Context) {
	if s.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run archive not configured"})
		return
	}

	if err := s.Runs.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps domain error codes onto HTTP statuses. Untagged errors
// are reported as internal without leaking their message.
func (s *Server) respondError(c *gin.Context, err error) {
	switch sitescope.ErrorCode(err) {
	case sitescope.EINVALID:
		c.JSON(http.StatusBadRequest, gin.H{"error": sitescope.ErrorMessage(err)})
	case sitescope.ENOTFOUND:
		c.JSON(http.StatusNotFound, gin.H{"error": sitescope.ErrorMessage(err)})
	default:
		if errors.Is(err, context.Canceled) {
			c.Status(499)
			return
		}
		s.Logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// logRequests emits one slog line per request with method, path, status
// and duration.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		s.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(begin),
		)
	}
}
