// Package server is the HTTP presentation adapter over the analyst core.
// Thin JSON glue only: it forwards to the Service and formats errors; all
// semantics live below it.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/timberlens-org/timberlens/analyst"
)

// Server routes HTTP requests to the analyst service.
type Server struct {
	router  *gin.Engine
	service *analyst.Service
	log     *zap.SugaredLogger
}

// New creates the HTTP server.
func New(service *analyst.Service, devMode bool, log *zap.SugaredLogger) *Server {
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		log:     log,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.POST("/ask", s.handleAsk)
		api.POST("/refresh", s.handleRefresh)
		api.GET("/diagnostics", s.handleDiagnostics)
		api.GET("/examples", s.handleExamples)
		api.GET("/table/export", s.handleExport)
	}
}

// Run starts the server on addr, blocking until it exits.
func (s *Server) Run(addr string) error {
	s.log.Infow("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
