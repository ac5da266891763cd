package http

import (
	"net/http"
	"strings"

	"tally/internal/core"
	"tally/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, toBudgetDTOs(s.store.Budgets()))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))

	var payload budgetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseAmountToCents(payload.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget := core.Budget{Category: category, Limit: core.Money{Cents: cents}}
	if err := s.store.SetBudget(r.Context(), budget); err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Budget set",
		log.FieldCategory, category,
		log.FieldAmountCents, cents)
	writeOK(w, budgetDTO{Category: category, Limit: toMoneyDTO(budget.Limit)})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))

	found, err := s.store.DeleteBudget(r.Context(), category)
	if !found {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Budget deleted", log.FieldCategory, category)
	writeOK(w, map[string]string{"category": category})
}
