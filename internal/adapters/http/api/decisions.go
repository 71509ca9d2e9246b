package api

import (
	"context"
	"net/http"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// DecisionsDependencies defines the engine recommendations exposed over HTTP.
type DecisionsDependencies interface {
	AllocateBonus(ctx context.Context, pool float64, filter model.CohortFilter) ([]model.BonusAllocation, error)
	RankPromotions(ctx context.Context, totalSlots int, filter model.CohortFilter) ([]model.PromotionCandidate, error)
}

// DecisionsHandler handles bonus allocation and promotion ranking requests.
type DecisionsHandler struct {
	deps DecisionsDependencies
}

// NewDecisionsHandler creates a new decisions handler.
func NewDecisionsHandler(deps DecisionsDependencies) *DecisionsHandler {
	return &DecisionsHandler{deps: deps}
}

type bonusAllocationRequest struct {
	Pool float64 `json:"pool"`
	cohortRequest
}

type promotionRankingRequest struct {
	TotalSlots int `json:"total_slots"`
	cohortRequest
}

// HandleAllocateBonus handles POST /bonus/allocations requests.
func (h *DecisionsHandler) HandleAllocateBonus(w http.ResponseWriter, r *http.Request) {
	const op = "api.allocate_bonus"
	var req bonusAllocationRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	allocations, err := h.deps.AllocateBonus(r.Context(), req.Pool, req.filter())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if allocations == nil {
		allocations = []model.BonusAllocation{}
	}
	writeJSON(w, http.StatusOK, allocations)
}

// HandleRankPromotions handles POST /promotions/rankings requests.
func (h *DecisionsHandler) HandleRankPromotions(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_promotions"
	var req promotionRankingRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	ranked, err := h.deps.RankPromotions(r.Context(), req.TotalSlots, req.filter())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if ranked == nil {
		ranked = []model.PromotionCandidate{}
	}
	writeJSON(w, http.StatusOK, ranked)
}
