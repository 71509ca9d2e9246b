package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// IdempotencyKeyHeader lets clients retry an audit submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const defaultListLimit = 20

// AuditsDependencies defines the audit operations exposed over HTTP.
type AuditsDependencies interface {
	AuditBonus(ctx context.Context, req service.BonusAuditRequest) (model.AuditRecord, error)
	AuditPromotion(ctx context.Context, req service.PromotionAuditRequest) (model.AuditRecord, error)
	SetFlag(ctx context.Context, entryID string) (model.AuditEntry, error)
	GetAuditRecord(ctx context.Context, id string) (model.AuditRecord, error)
	ListAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error)
	MaxListLimit() int
}

// AuditsHandler handles audit submission, retrieval and flagging.
type AuditsHandler struct {
	deps AuditsDependencies
}

// NewAuditsHandler creates a new audits handler.
func NewAuditsHandler(deps AuditsDependencies) *AuditsHandler {
	return &AuditsHandler{deps: deps}
}

type bonusAuditRequest struct {
	Name    string             `json:"name"`
	Pool    float64            `json:"pool"`
	Amounts map[string]float64 `json:"amounts"`
	cohortRequest
}

type promotionAuditRequest struct {
	Name      string         `json:"name"`
	Decisions map[string]int `json:"decisions"`
	cohortRequest
}

type flagRequest struct {
	IsFlagged *bool `json:"is_flagged"`
}

// auditSummary is the list shape of an audit record; entries are fetched per record.
type auditSummary struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	DecisionType          model.DecisionType `json:"decision_type"`
	DepartmentID          string             `json:"department_id,omitempty"`
	TotalEmployeesAudited int                `json:"total_employees_audited"`
	AgreementScore        float64            `json:"agreement_score"`
	CreatedAt             time.Time          `json:"created_at"`
}

// HandleAuditBonus handles POST /audits/bonus requests.
func (h *AuditsHandler) HandleAuditBonus(w http.ResponseWriter, r *http.Request) {
	const op = "api.audit_bonus"
	var req bonusAuditRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	rec, err := h.deps.AuditBonus(r.Context(), service.BonusAuditRequest{
		Name:           strings.TrimSpace(req.Name),
		Pool:           req.Pool,
		Amounts:        req.Amounts,
		Scope:          req.filter(),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleAuditPromotion handles POST /audits/promotion requests.
func (h *AuditsHandler) HandleAuditPromotion(w http.ResponseWriter, r *http.Request) {
	const op = "api.audit_promotion"
	var req promotionAuditRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	rec, err := h.deps.AuditPromotion(r.Context(), service.PromotionAuditRequest{
		Name:           strings.TrimSpace(req.Name),
		Decisions:      req.Decisions,
		Scope:          req.filter(),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleListAudits handles GET /audits?limit=N requests.
func (h *AuditsHandler) HandleListAudits(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_audits"
	n := min(defaultListLimit, h.deps.MaxListLimit())
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	records, err := h.deps.ListAuditRecords(r.Context(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	out := make([]auditSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, auditSummary{
			ID:                    rec.ID,
			Name:                  rec.Name,
			DecisionType:          rec.DecisionType,
			DepartmentID:          rec.DepartmentID,
			TotalEmployeesAudited: rec.TotalEmployeesAudited,
			AgreementScore:        rec.AgreementScore,
			CreatedAt:             rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetAudit handles GET /audits/{id} requests.
func (h *AuditsHandler) HandleGetAudit(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_audit"
	rec, err := h.deps.GetAuditRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleFlagEntry handles POST /audit-entries/{id}/flag requests. The body is
// optional; asking to clear a flag is refused because flags are one-way.
func (h *AuditsHandler) HandleFlagEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.flag_entry"
	var req flagRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, ErrBodyTooLong) {
			writeFailure(w, NewKind(op, ErrBodyTooLong))
			return
		}
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.IsFlagged != nil && !*req.IsFlagged {
		writeFailure(w, NewKind(op, audit.ErrFlagIrreversible))
		return
	}
	entry, err := h.deps.SetFlag(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
}
