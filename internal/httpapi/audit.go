package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type auditRecordResponse struct {
	ID         uint   `json:"id"`
	RecordedAt string `json:"recorded_at"`
	Actor      string `json:"actor"`
	Module     string `json:"module"`
	Action     string `json:"action"`
	Details    string `json:"details"`
}

// purgeAuditRequest keeps ids raw: clients send numbers, strings or a mix,
// and non-numeric entries are skipped by the recorder rather than rejected.
type purgeAuditRequest struct {
	IDs []json.RawMessage `json:"ids"`
}

func (h *Handler) routeAudit(w http.ResponseWriter, r *http.Request, recordID uint, hasID bool) {
	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleListAudit(w, r)
	case !hasID && r.Method == http.MethodDelete:
		h.handlePurgeAudit(w, r)
	case hasID && r.Method == http.MethodDelete:
		h.handleDeleteAuditRecord(w, r, recordID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	records, err := h.services.Audit.List(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	response := make([]auditRecordResponse, 0, len(records))
	for _, record := range records {
		response = append(response, auditRecordToResponse(record))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handlePurgeAudit(w http.ResponseWriter, r *http.Request) {
	var req purgeAuditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must be a non-empty list")
		return
	}

	deleted, err := h.services.Audit.Purge(r.Context(), idTokens(req.IDs))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"deleted_count": deleted,
	})
}

func (h *Handler) handleDeleteAuditRecord(w http.ResponseWriter, r *http.Request, recordID uint) {
	if err := h.services.Audit.Delete(r.Context(), recordID); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "audit record deleted")
}

func idTokens(raw []json.RawMessage) []string {
	tokens := make([]string, 0, len(raw))
	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			tokens = append(tokens, strings.TrimSpace(text))
			continue
		}
		tokens = append(tokens, strings.TrimSpace(string(item)))
	}
	return tokens
}

func auditRecordToResponse(record models.AuditRecord) auditRecordResponse {
	return auditRecordResponse{
		ID:         record.ID,
		RecordedAt: record.RecordedAt.Format(service.DateTimeLayout),
		Actor:      record.Actor,
		Module:     record.Module,
		Action:     record.Action,
		Details:    record.Details,
	}
}
