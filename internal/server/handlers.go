package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pharmwatch/icsr-sentinel/internal/events"
	"github.com/pharmwatch/icsr-sentinel/internal/masking"
	"github.com/pharmwatch/icsr-sentinel/internal/pipeline"
	"go.uber.org/zap"
)

// handleHealth returns service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": Version,
	})
}

// handleInfo returns service configuration summary.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"service":  "icsr-sentinel",
		"version":  Version,
		"enhance":  s.config.Enhance.Enabled,
		"cache":    s.cache != nil,
		"store":    s.store != nil,
		"events":   s.hub != nil,
		"max_size": s.config.Analysis.MaxDocumentSize,
	}
	if s.hub != nil {
		info["connected_clients"] = s.hub.ClientCount()
	}
	s.writeJSON(w, http.StatusOK, info)
}

// handleAnalyze runs the pipeline over the posted document body. The document
// name comes from the X-Document-Name header or the name query parameter.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.Analysis.MaxDocumentSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "document exceeds size limit")
		return
	}

	name := r.Header.Get("X-Document-Name")
	if name == "" {
		name = r.URL.Query().Get("name")
	}
	if name == "" {
		name = "upload.xml"
	}

	if !pipeline.LooksLikeReport(body) {
		s.writeError(w, http.StatusBadRequest, "document does not look like an adverse event report")
		return
	}

	cacheHit := false
	var analysis *pipeline.Analysis
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(body)
		if cached := s.cache.Get(r.Context(), cacheKey); cached != nil {
			analysis = cached
			cacheHit = true
		}
	}

	if analysis == nil {
		analysis, err = s.analyzer.Analyze(r.Context(), name, body)
		if errors.Is(err, pipeline.ErrInvalidStructure) {
			s.writeJSON(w, http.StatusUnprocessableEntity, analysis)
			return
		}
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if s.cache != nil {
			if err := s.cache.Put(r.Context(), cacheKey, analysis); err != nil {
				s.logger.Warn("failed to cache analysis", zap.Error(err))
			}
		}
		if s.store != nil {
			if err := s.store.SaveResult(r.Context(), name, string(analysis.Format), analysis.Compliance); err != nil {
				s.logger.Warn("failed to persist result", zap.Error(err))
			}
		}
	}

	if s.hub != nil && analysis.Compliance != nil {
		s.hub.Broadcast(events.EventTypeAnalysis, events.AnalysisEvent{
			Document:   name,
			Format:     string(analysis.Format),
			Score:      analysis.Compliance.OverallScore,
			Level:      string(analysis.Compliance.Level),
			Detections: len(analysis.Detections),
			IssueCount: len(analysis.Compliance.Issues),
			CacheHit:   cacheHit,
		})
	}

	s.writeJSON(w, http.StatusOK, analysis)
}

// maskRequest is the payload for POST /v1/mask.
type maskRequest struct {
	Document   string              `json:"document"`
	Selections []masking.Selection `json:"selections"`
}

// maskResponse is the reply for POST /v1/mask.
type maskResponse struct {
	Document    string `json:"document"`
	MaskedCount int    `json:"maskedCount"`
}

// handleMask applies the posted selections to the posted document.
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	var req maskRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.config.Analysis.MaxDocumentSize)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Document == "" {
		s.writeError(w, http.StatusBadRequest, "document is required")
		return
	}

	out, masked, err := masking.ApplyToBytes([]byte(req.Document), req.Selections)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(events.EventTypeMasking, events.MaskingEvent{
			Document:    r.URL.Query().Get("name"),
			MaskedCount: masked,
		})
	}

	s.writeJSON(w, http.StatusOK, maskResponse{
		Document:    string(out),
		MaskedCount: masked,
	})
}

// handleStats aggregates statistics from the store and the cache.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}

	if s.store != nil {
		storeStats, err := s.store.GetStatistics(r.Context())
		if err != nil {
			s.logger.Error("failed to read statistics", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to read statistics")
			return
		}
		stats["compliance"] = storeStats
	}

	if s.cache != nil {
		cacheStats, err := s.cache.GetStats(r.Context())
		if err != nil {
			s.logger.Warn("failed to read cache statistics", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}

	if s.hub != nil {
		stats["connected_clients"] = s.hub.ClientCount()
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
