package http

import (
	"errors"
	"net/http"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/query"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := query.Apply(s.store.Transactions(), filter)
	writeOK(w, toTransactionDTOs(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := payload.toDraft()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.store.AddTransaction(r.Context(), draft)
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction created",
		log.FieldTransactionID, tx.ID,
		log.FieldKind, string(tx.Kind),
		log.FieldCategory, tx.Category,
		log.FieldAmountCents, tx.Amount.Cents)
	writeCreated(w, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload transactionPatchPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, err := payload.toPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Error first: a rejected patch is a validation result even when the
	// id exists. Not-found only fires for an acceptable patch.
	tx, found, err := s.store.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction updated", log.FieldTransactionID, id)
	writeOK(w, toTransactionDTO(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	found, err := s.store.DeleteTransaction(r.Context(), id)
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id)
	writeOK(w, map[string]string{"id": id})
}

// writeMutationError maps store errors to HTTP responses. A sync
// failure still committed in memory, so it reports 502 with the
// advisory message rather than a validation status.
func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrSyncFailed):
		s.logger.ErrorContext(r.Context(), "Ledger sync failed", log.FieldError, err)
		writeError(w, http.StatusBadGateway, "change applied but sync to storage failed")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "Mutation failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrInvalidFrequency,
		core.ErrEmptyCategory,
		core.ErrNoteTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
