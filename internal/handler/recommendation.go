package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// POST /recommendation/menu/{menuId}
func (h *Handler) RecommendForMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := parseMenuID(chi.URLParam(r, "menuId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "a valid menu id is required")
		return
	}
	userID, ok := parseUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid userId parameter")
		return
	}

	mealID, err := h.recs.RecommendForMenu(r.Context(), menuID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mealID)
}

// POST /recommendation/date/{date}
func (h *Handler) RecommendForDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "date must be formatted as YYYY-MM-DD")
		return
	}
	userID, ok := parseUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid userId parameter")
		return
	}

	mealID, err := h.recs.RecommendForDate(r.Context(), date, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mealID)
}
