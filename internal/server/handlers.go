package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/diligence"
	"github.com/sells-group/arbitrage-cli/internal/model"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"opportunities": s.repo.Len(),
	})
}

type listResponse struct {
	Opportunities []dataset.Listing `json:"opportunities"`
}

// listOpportunities handles GET /api/opportunities?city=&minScore=. An
// unparseable minScore is ignored.
func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := dataset.Filter{City: q.Get("city")}
	if v := q.Get("minScore"); v != "" {
		if minScore, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinScore = minScore
		}
	}
	respondJSON(w, http.StatusOK, listResponse{Opportunities: s.repo.List(f)})
}

func (s *Server) getOpportunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, ok := s.repo.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "opportunity not found: "+id)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) getDiligence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, ok := s.repo.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "opportunity not found: "+id)
		return
	}
	respondJSON(w, http.StatusOK, diligence.Build(l))
}

// rankOpportunities handles POST /api/opportunities/rank. The body is an
// ArbitrageProfile; an empty body ranks with the configured default.
func (s *Server) rankOpportunities(w http.ResponseWriter, r *http.Request) {
	profile := s.opts.DefaultProfile.Clone()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid profile: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid profile: unexpected data after JSON object")
		return
	}

	ranked, err := s.repo.Rank(profile)
	if err != nil {
		if eris.Is(err, model.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("server: rank failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "ranking failed")
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

func (s *Server) getValidation(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.validation())
}
