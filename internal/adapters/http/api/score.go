package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
)

// ScoreDependencies defines the interface for single-employee scoring.
type ScoreDependencies interface {
	ScoreEmployee(ctx context.Context, employeeID string) (scoring.Result, error)
}

// ScoreHandler handles score requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleGetScore handles GET /employees/{id}/score requests.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.ScoreEmployee(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
