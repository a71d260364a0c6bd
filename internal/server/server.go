// Package server exposes the analysis pipeline over HTTP: document analysis,
// masking, statistics and a WebSocket event feed for dashboards.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pharmwatch/icsr-sentinel/internal/cache"
	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/events"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/pipeline"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"github.com/pharmwatch/icsr-sentinel/internal/store"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

// Server is the HTTP boundary around the analysis pipeline. Cache, store and
// hub are optional; a nil dependency disables the corresponding behavior.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	analyzer *pipeline.Analyzer
	cache    *cache.ResultCache
	store    *store.Store
	hub      *events.Hub
	router   *mux.Router
	server   *http.Server
	limiter  *clientLimiter
}

// New creates a server instance wired to the given dependencies.
func New(cfg *config.Config, log *logger.Logger, resultCache *cache.ResultCache, resultStore *store.Store) (*Server, error) {
	var classifier *privacy.Classifier
	if cfg.Enhance.Enabled {
		enhancer := privacy.NewRemoteClassifier(cfg.Enhance, log.WithComponent("privacy"))
		classifier = privacy.NewWithEnhancer(log.WithComponent("privacy"), enhancer)
	} else {
		classifier = privacy.New(log.WithComponent("privacy"))
	}

	s := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		analyzer: pipeline.New(cfg.Analysis, log, classifier),
		cache:    resultCache,
		store:    resultStore,
		router:   mux.NewRouter(),
	}

	if cfg.Events.Enabled {
		s.hub = events.NewHub(cfg.Events, log)
	}
	if cfg.Server.RateLimit.Enabled {
		s.limiter = newClientLimiter(cfg.Server.RateLimit)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc(s.config.Events.Path, s.hub.HandleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/mask", s.handleMask).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// Start starts the HTTP server and the event hub.
func (s *Server) Start() error {
	s.logger.Info("starting ICSR-Sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("cache", s.cache != nil),
		zap.Bool("store", s.store != nil),
		zap.Bool("events", s.hub != nil),
		zap.Bool("enhance", s.config.Enhance.Enabled),
	)

	if s.hub != nil {
		go s.hub.Run()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping ICSR-Sentinel server")
	return s.server.Shutdown(ctx)
}
