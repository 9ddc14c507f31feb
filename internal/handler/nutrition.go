package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GET /nutrition/analyze/menu/{menuId}
func (h *Handler) AnalyzeMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := parseMenuID(chi.URLParam(r, "menuId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "a valid menu id is required")
		return
	}

	totals, err := h.nutrition.AnalyzeTotals(r.Context(), menuID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// GET /nutrition/assess/menu/{menuId}
func (h *Handler) AssessMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := parseMenuID(chi.URLParam(r, "menuId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "a valid menu id is required")
		return
	}

	assessment, err := h.nutrition.AssessHealth(r.Context(), menuID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
