// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	ScoreEmployee(ctx context.Context, employeeID string) (scoring.Result, error)
	AllocateBonus(ctx context.Context, pool float64, filter model.CohortFilter) ([]model.BonusAllocation, error)
	RankPromotions(ctx context.Context, totalSlots int, filter model.CohortFilter) ([]model.PromotionCandidate, error)

	AuditBonus(ctx context.Context, req service.BonusAuditRequest) (model.AuditRecord, error)
	AuditPromotion(ctx context.Context, req service.PromotionAuditRequest) (model.AuditRecord, error)
	SetFlag(ctx context.Context, entryID string) (model.AuditEntry, error)
	GetAuditRecord(ctx context.Context, id string) (model.AuditRecord, error)
	ListAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error)
	MaxListLimit() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	scoreHandler     *ScoreHandler
	decisionsHandler *DecisionsHandler
	auditsHandler    *AuditsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		scoreHandler:     NewScoreHandler(deps),
		decisionsHandler: NewDecisionsHandler(deps),
		auditsHandler:    NewAuditsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /employees/{id}/score", MetricsMiddleware(s.scoreHandler.HandleGetScore, "employee_score"))
	mux.HandleFunc("POST /bonus/allocations", MetricsMiddleware(s.decisionsHandler.HandleAllocateBonus, "bonus_allocations"))
	mux.HandleFunc("POST /promotions/rankings", MetricsMiddleware(s.decisionsHandler.HandleRankPromotions, "promotion_rankings"))

	mux.HandleFunc("POST /audits/bonus", MetricsMiddleware(s.auditsHandler.HandleAuditBonus, "audit_bonus"))
	mux.HandleFunc("POST /audits/promotion", MetricsMiddleware(s.auditsHandler.HandleAuditPromotion, "audit_promotion"))
	mux.HandleFunc("GET /audits", MetricsMiddleware(s.auditsHandler.HandleListAudits, "audits"))
	mux.HandleFunc("GET /audits/{id}", MetricsMiddleware(s.auditsHandler.HandleGetAudit, "audit"))
	mux.HandleFunc("POST /audit-entries/{id}/flag", MetricsMiddleware(s.auditsHandler.HandleFlagEntry, "audit_entry_flag"))
}

// cohortRequest is the filter shared by every cohort-wide request body.
type cohortRequest struct {
	DepartmentIDs []string `json:"department_ids"`
	EmployeeIDs   []string `json:"employee_ids"`
}

func (c cohortRequest) filter() model.CohortFilter {
	return model.CohortFilter{DepartmentIDs: c.DepartmentIDs, EmployeeIDs: c.EmployeeIDs}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure reports err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// decodeJSON reads a single JSON object from the request body into v.
// An empty body is reported as io.EOF so callers with optional bodies can accept it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLong
		}
		return err
	}
	return nil
}

// decodeBody is decodeJSON for required bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) error {
	err := decodeJSON(w, r, v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrBodyTooLong):
		return NewKind(op, ErrBodyTooLong)
	case errors.Is(err, io.EOF):
		return WrapKind(op, ErrBadRequest, errors.New("missing request body"))
	default:
		return WrapKind(op, ErrBadRequest, err)
	}
}
