package http

import (
	"errors"
	"fmt"
	"net/http"

	"tally/internal/export"
	"tally/internal/log"
	"tally/internal/sink"
)

// handleExport streams a dataset in the requested format. PDF is part
// of the accepted format set but has no byte renderer yet, so it
// reports 501.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dataset := export.Dataset(r.URL.Query().Get("dataset"))
	if dataset == "" {
		dataset = export.DatasetTransactions
	}
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatCSV
	}

	rng, err := parseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.formatter.Build(dataset, format, export.Scope{Range: rng})
	switch {
	case errors.Is(err, export.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, export.ErrUnknownDataset):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Export build failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if format == export.FormatCSV && res.Table == nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("dataset %s has no tabular form, use json", dataset))
		return
	}

	filename := fmt.Sprintf("tally-%s.%s", dataset, format)

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := sink.NewCSVSink().Write(w, res); err != nil {
			s.logger.ErrorContext(r.Context(), "CSV export failed",
				log.FieldDataset, string(dataset), log.FieldError, err)
		}
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := sink.NewJSONSink().Write(w, res); err != nil {
			s.logger.ErrorContext(r.Context(), "JSON export failed",
				log.FieldDataset, string(dataset), log.FieldError, err)
		}
	case export.FormatPDF:
		writeError(w, http.StatusNotImplemented, "pdf rendering is not available")
	}

	s.logger.InfoContext(r.Context(), "Export served",
		log.FieldOperation, log.OpExport,
		log.FieldDataset, string(dataset),
		log.FieldFormat, string(format))
}
