package web

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/cardex/internal/web/templates"
)

// handleImport stores the cards of an uploaded CSV or XML file. Rejected
// records come back in the response; they do not fail the request.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, s.service.Options().MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	result, err := s.service.Import(ctx, up)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		failed := make([]templates.FailedRecord, len(result.Failures))
		for i, f := range result.Failures {
			failed[i] = templates.FailedRecord{
				Name:   f.Record.Name,
				Email:  f.Record.Email,
				Reason: f.Reason,
				Code:   f.Code,
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportSummary(up.Name, len(result.Successes), failed).Render(r.Context(), w); err != nil {
			respondError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleExport downloads cards as a file. Query: format (csv or xml,
// default csv) and ids, a comma-separated list; no ids exports every card.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var ids []uuid.UUID
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, r, errInvalidID)
			return
		}
		ids = append(ids, id)
	}

	file, err := s.service.Export(r.Context(), ids, format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
