package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/avelov/arbscan/internal/domain"
)

// ScanRunner is the scan surface the handler requires.
type ScanRunner interface {
	RunScan(ctx context.Context, markets []string) (domain.ScanResult, error)
	Latest(ctx context.Context) (domain.ScanResult, error)
}

// ScanHandler serves scan-related HTTP endpoints. It is the integration
// point for downstream reporting/trading consumers; there is no human
// dashboard behind it.
type ScanHandler struct {
	scans  ScanRunner
	store  domain.ScanStore // optional; nil disables history endpoints
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler with the given runner and logger.
func NewScanHandler(scans ScanRunner, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{scans: scans, logger: logger}
}

// WithStore enables the persisted-history endpoints.
func (h *ScanHandler) WithStore(store domain.ScanStore) *ScanHandler {
	h.store = store
	return h
}

// Latest returns the most recent cached scan result.
// GET /api/scan/latest
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.scans.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no scan has completed yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: latest scan failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load latest scan")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// triggerRequest is the optional JSON body of a manual scan trigger.
type triggerRequest struct {
	Markets []string `json:"markets"`
}

// Trigger runs a scan synchronously and returns the merged result. An empty
// or absent markets list scans the configured defaults.
// POST /api/scan/trigger
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	// Body is optional; an empty body scans the configured defaults.
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.scans.RunScan(r.Context(), req.Markets)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: scan trigger failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecentOpportunities returns recently persisted opportunities.
// GET /api/opportunities/recent?limit=50
func (h *ScanHandler) RecentOpportunities(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	limit := queryLimit(r, 50, 500)
	opps, err := h.store.ListRecentOpportunities(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
}

// ScanHistory returns recent scan digests.
// GET /api/scan/history?limit=20
func (h *ScanHandler) ScanHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	limit := queryLimit(r, 20, 200)
	scans, err := h.store.ListScans(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: scan history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if scans == nil {
		scans = []domain.ScanSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": scans})
}
