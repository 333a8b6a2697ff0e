/*
handlers.go - HTTP API handlers for the folga ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine.

ENDPOINTS:
  Officers:
    GET    /api/officers               List all officers
    POST   /api/officers               Register officer
    GET    /api/officers/{id}          Officer with aggregate balance
    PUT    /api/officers/{id}          Full-record replace
    DELETE /api/officers/{id}          Cascade delete officer + records
    GET    /api/officers/{id}/records  Filtered/sorted record set
    GET    /api/officers/{id}/descriptions  Prefill descriptions
    GET    /api/officers/{id}/report   Narrative report (best-effort)

  Records:
    POST   /api/records                Grant entitlement
    POST   /api/records/{id}/redeem    Redeem (full or split)
    DELETE /api/records/{id}           Delete one record

  Aggregation:
    GET    /api/summary                System-wide summary
    GET    /api/meta                   Enumerations for forms

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid redemption / grant
  - 404: officer or record not found
  - 500: store failures
  - 503: report collaborator unavailable (ledger unaffected)

SECURITY NOTE:
  No authentication or authorization. A hosting deployment must front
  this API with a proper credential/session mechanism.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vigia/folga-engine/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *ledger.Engine
}

// NewHandler creates a handler over the given engine.
func NewHandler(engine *ledger.Engine) *Handler {
	return &Handler{Engine: engine}
}

// =============================================================================
// OFFICER HANDLERS
// =============================================================================

// ListOfficers returns all officers.
func (h *Handler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	officers, err := h.Engine.Officers(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]OfficerDTO, len(officers))
	for i, o := range officers {
		dtos[i] = toOfficerDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateOfficer registers a new officer.
func (h *Handler) CreateOfficer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	officer, err := h.Engine.RegisterOfficer(r.Context(), req.Name, ledger.Rank(req.Rank), req.Matricula, req.Unit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOfficerDTO(officer))
}

// GetOfficer returns one officer with its aggregate balance.
func (h *Handler) GetOfficer(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))

	officer, err := h.Engine.Officer(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	balance, err := h.Engine.OfficerBalance(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	available, _ := balance.Available.Float64()
	used, _ := balance.Used.Float64()
	writeJSON(w, http.StatusOK, OfficerDetailDTO{
		Officer:   toOfficerDTO(officer),
		Available: available,
		Used:      used,
	})
}

// ReplaceOfficer overwrites an officer record in full.
func (h *Handler) ReplaceOfficer(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))

	var req ReplaceOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	officer := ledger.Officer{
		ID:        id,
		Name:      req.Name,
		Rank:      ledger.Rank(req.Rank),
		Matricula: req.Matricula,
		Unit:      req.Unit,
	}
	if err := h.Engine.ReplaceOfficer(r.Context(), officer); err != nil {
		writeEngineError(w, err)
		return
	}
	stored, err := h.Engine.Officer(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfficerDTO(stored))
}

// DeleteOfficer removes an officer and all its records.
func (h *Handler) DeleteOfficer(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))

	if err := h.Engine.RemoveOfficer(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// ListOfficerRecords returns an officer's records, filtered and sorted.
// Query params: status (ALL|AVAILABLE|USED|EXPIRED), sort
// (SERVICE_DESC|SERVICE_ASC|USED_DESC).
func (h *Handler) ListOfficerRecords(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))

	filter := ledger.StatusFilter(r.URL.Query().Get("status"))
	if filter == "" {
		filter = ledger.FilterAll
	}
	if !filter.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}

	sortKey := ledger.SortKey(r.URL.Query().Get("sort"))
	if sortKey == "" {
		sortKey = ledger.SortServiceDateDesc
	}
	if !sortKey.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid sort key", nil)
		return
	}

	if _, err := h.Engine.Officer(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}

	records, err := h.Engine.RecordsByOfficer(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTOs(ledger.Project(records, filter, sortKey)))
}

// ListDescriptions returns the distinct service descriptions an officer
// has used for a service type, for form prefill.
func (h *Handler) ListDescriptions(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))
	serviceType := ledger.ServiceType(r.URL.Query().Get("service_type"))
	if !serviceType.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid service_type", nil)
		return
	}

	if _, err := h.Engine.Officer(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}

	descriptions, err := h.Engine.ServiceDescriptions(r.Context(), id, serviceType)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if descriptions == nil {
		descriptions = []string{}
	}
	writeJSON(w, http.StatusOK, descriptions)
}

// CreateRecord grants a new entitlement. The officer must exist; the
// existence check lives here rather than in the engine, which stays
// permissive about officer ids by design.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Engine.Officer(r.Context(), ledger.OfficerID(req.OfficerID)); err != nil {
		writeEngineError(w, err)
		return
	}

	serviceDate, err := ledger.ParseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service_date (use YYYY-MM-DD)", err)
		return
	}

	in := ledger.GrantInput{
		OfficerID:          ledger.OfficerID(req.OfficerID),
		ServiceType:        ledger.ServiceType(req.ServiceType),
		ServiceDescription: req.ServiceDescription,
		ServiceDate:        serviceDate,
		Amount:             ledger.Days(req.Amount),
		Notes:              req.Notes,
	}
	if req.DateUsed != "" {
		dateUsed, err := ledger.ParseDate(req.DateUsed)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date_used (use YYYY-MM-DD)", err)
			return
		}
		in.DateUsed = dateUsed
	}

	record, err := h.Engine.Grant(r.Context(), in)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(record))
}

// RedeemRecord consumes quantity from a record on a date.
func (h *Handler) RedeemRecord(w http.ResponseWriter, r *http.Request) {
	id := ledger.RecordID(chi.URLParam(r, "id"))

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Engine.Redeem(r.Context(), id, ledger.Days(req.Quantity), date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := RedeemResponse{Redeemed: toRecordDTO(result.Redeemed)}
	if result.Remainder != nil {
		dto := toRecordDTO(*result.Remainder)
		resp.Remainder = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteRecord removes a single leave record.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := ledger.RecordID(chi.URLParam(r, "id"))

	if err := h.Engine.DeleteRecord(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// AGGREGATION AND METADATA HANDLERS
// =============================================================================

// GetSummary returns the system-wide balance aggregate.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Engine.Summarize(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	available, _ := summary.TotalAvailable.Float64()
	used, _ := summary.TotalUsed.Float64()
	writeJSON(w, http.StatusOK, SummaryDTO{
		OfficerCount:   summary.OfficerCount,
		TotalAvailable: available,
		TotalUsed:      used,
	})
}

// GetMeta returns the closed enumerations for form frontends.
func (h *Handler) GetMeta(w http.ResponseWriter, r *http.Request) {
	meta := MetaDTO{}
	for _, rank := range ledger.Ranks() {
		meta.Ranks = append(meta.Ranks, EnumValueDTO{Value: string(rank), Label: rank.Label()})
	}
	for _, st := range ledger.ServiceTypes() {
		meta.ServiceTypes = append(meta.ServiceTypes, EnumValueDTO{Value: string(st), Label: st.Label()})
	}
	for _, status := range []ledger.Status{ledger.StatusAvailable, ledger.StatusUsed, ledger.StatusExpired} {
		meta.Statuses = append(meta.Statuses, EnumValueDTO{Value: string(status), Label: status.Label()})
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetOfficerReport returns the best-effort narrative report. Report
// failures never surface as ledger failures; they map to 503 with a
// user-visible message.
func (h *Handler) GetOfficerReport(w http.ResponseWriter, r *http.Request) {
	id := ledger.OfficerID(chi.URLParam(r, "id"))

	text, err := h.Engine.NarrativeReport(r.Context(), id)
	if err != nil {
		if ledger.IsReportDegraded(err) {
			writeError(w, http.StatusServiceUnavailable, "Relatório indisponível no momento", err)
			return
		}
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{Report: text})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid operation", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
