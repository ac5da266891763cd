package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/trend"
)

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	kind := core.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.Expense
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid kind %q", kind))
		return
	}

	periodParam := r.URL.Query().Get("period")
	if periodParam == "" {
		periodParam = string(trend.PeriodCurrent)
	}
	period, err := trend.ParsePeriod(periodParam)
	if errors.Is(err, trend.ErrUnknownPeriod) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown period %q", periodParam))
		return
	}

	key := fmt.Sprintf("analysis:%d:%s:%s", s.store.Version(), kind, period)
	analysis, hit := s.analysisCache.Get(key)
	if !hit {
		analysis = s.analyzer.CategoryAnalysis(kind, period, time.Now())
		s.analysisCache.Set(key, analysis)
	}

	writeOK(w, toAnalysisDTO(analysis))
}

func (s *Server) handleCategoryTrend(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	kind := core.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.Expense
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid kind %q", kind))
		return
	}

	points := s.analyzer.CategoryTrend(category, kind, time.Now())
	writeOK(w, toTrendPointDTOs(points))
}
