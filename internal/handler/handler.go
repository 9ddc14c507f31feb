package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

// statusClientClosedRequest is the non-standard code nginx uses for a
// request the client gave up on. A server-side deadline is a 504 instead.
const statusClientClosedRequest = 499

type Recommender interface {
	RecommendForMenu(ctx context.Context, menuID int64, userID *int64) (int64, error)
	RecommendForDate(ctx context.Context, date time.Time, userID *int64) (int64, error)
	RecommendForMenus(ctx context.Context, menuIDs []int64, userID *int64) (int64, error)
}

type NutritionAnalyzer interface {
	AnalyzeTotals(ctx context.Context, menuID int64) (domain.NutritionTotals, error)
	AssessHealth(ctx context.Context, menuID int64) (domain.NutritionAssessment, error)
}

type Handler struct {
	recs      Recommender
	nutrition NutritionAnalyzer
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewHandler(recs Recommender, nutrition NutritionAnalyzer, logger *zap.Logger) *Handler {
	return &Handler{
		recs:      recs,
		nutrition: nutrition,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.Named("handler"),
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServiceError maps an error from the services to a status code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidModelOutput):
		writeError(w, http.StatusBadRequest, "invalid_model_output", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrCancelled) && errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request_timeout", "Request timed out, please try again")
	case errors.Is(err, domain.ErrCancelled):
		writeError(w, statusClientClosedRequest, "request_cancelled", "Request was cancelled")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusInternalServerError, "service_unavailable",
			"Recommendation service is temporarily unavailable")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// parseMenuID accepts any integer; the services reject ids that are not positive.
func parseMenuID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// parseUserID reads the optional userId query parameter.
func parseUserID(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
