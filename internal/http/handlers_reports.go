package http

import (
	"fmt"
	"net/http"
	"time"
)

// Report responses are memoized keyed by the ledger version, so any
// mutation naturally invalidates the cache.

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	params, err := parseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("summary:%d:%d-%02d", s.store.Version(), params.Year, params.Month)
	summary, hit := s.summaryCache.Get(key)
	if !hit {
		summary = s.agg.MonthlySummary(params.Year, params.Month)
		s.summaryCache.Set(key, summary)
	}

	writeOK(w, toSummaryDTO(summary))
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	params, err := parseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	statuses := s.agg.BudgetSummary(params.Year, params.Month)
	writeOK(w, toBudgetStatusDTOs(statuses))
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, toMonthPointDTOs(s.agg.MonthlySeries()))
}
