// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/bonus"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/cohort"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/dedupe"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/promotion"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/metrics"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/tracing"
)

// Operation names used for spans, metrics and logs.
const (
	OpScoreEmployee  = "score_employee"
	OpAllocateBonus  = "allocate_bonus"
	OpRankPromotions = "rank_promotions"
	OpAuditBonus     = "audit_bonus"
	OpAuditPromotion = "audit_promotion"
	OpSetFlag        = "set_flag"
)

// BonusAuditRequest compares human bonus amounts (employee id -> amount) with
// the engine's allocation of Pool over Scope.
type BonusAuditRequest struct {
	Name           string
	Pool           float64
	Amounts        map[string]float64
	Scope          model.CohortFilter
	IdempotencyKey string
}

// PromotionAuditRequest compares human promotion decisions (employee id -> 0|1)
// with the engine's ranking over Scope. The slot count is the number of 1s.
type PromotionAuditRequest struct {
	Name           string
	Decisions      map[string]int
	Scope          model.CohortFilter
	IdempotencyKey string
}

// Service implements the API dependencies for the decision engine.
type Service struct {
	mu sync.RWMutex

	source  repository.RatingSource
	audits  repository.AuditStore
	deduper dedupe.Deduper

	concurrency     int
	idempotencySize int
	maxListLimit    int
	now             func() time.Time
	newID           func() string

	started   bool
	startedAt time.Time

	computations atomic.Int64
	failures     atomic.Int64

	logger logger.Logger
	tracer trace.Tracer
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		concurrency:     runtime.NumCPU(),
		idempotencySize: 10_000,
		maxListLimit:    100,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          logger.Nop(),
		tracer:          tracing.Tracer("glassbox/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))
	}
	return s
}

// Start checks the dependencies and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil || s.audits == nil {
		return ErrMissingStore
	}
	if s.started {
		return nil
	}
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "service started", logger.Int("scoring_concurrency", s.concurrency))
	return nil
}

// Stop marks the service stopped. Calls after Stop fail with ErrNotStarted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// begin opens a span for op; the returned func must be deferred with the
// operation's error.
func (s *Service) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	start := time.Now()
	s.logger.Debug(ctx, "operation started", logger.String("op", op))

	return ctx, func(errp *error) {
		defer span.End()
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.failures.Add(1)
			metrics.RecordComputationError(op)
			s.logger.Error(ctx, "operation failed", logger.String("op", op), logger.Error(err))
			return
		}
		s.computations.Add(1)
		metrics.RecordComputation(op, elapsed)
		s.logger.Debug(ctx, "operation finished", logger.String("op", op), logger.Float64("elapsed_ms", elapsed))
	}
}

// snapshot reads every project (weights are normalized globally, not per
// cohort) with the tasks and ratings that belong to them.
func (s *Service) snapshot(ctx context.Context) (*scoring.Snapshot, error) {
	projects, err := s.source.FetchProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := s.source.FetchTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	ratings, err := s.source.FetchRatings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	return scoring.NewSnapshot(projects, tasks, ratings), nil
}

// scoreCohort scores every employee matching filter. Members keep the store's
// employee order regardless of which goroutine finishes first.
func (s *Service) scoreCohort(ctx context.Context, op string, filter model.CohortFilter) ([]cohort.Member, error) {
	employees, err := s.source.FetchEmployees(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch employees: %w", err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]cohort.Member, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, e := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			members[i] = cohort.Member{Employee: e, Result: snap.Score(e)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.RecordCohortSize(op, len(members))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("cohort.size", len(members)))
	return members, nil
}

// ScoreEmployee computes one employee's contribution score and breakdown.
func (s *Service) ScoreEmployee(ctx context.Context, employeeID string) (res scoring.Result, err error) {
	if err := s.ready(); err != nil {
		return scoring.Result{}, err
	}
	ctx, end := s.begin(ctx, OpScoreEmployee, attribute.String("employee.id", employeeID))
	defer end(&err)

	e, err := s.source.FetchEmployee(ctx, employeeID)
	if err != nil {
		return scoring.Result{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return scoring.Result{}, err
	}
	return snap.Score(e), nil
}

// AllocateBonus splits pool across the cohort selected by filter.
func (s *Service) AllocateBonus(ctx context.Context, pool float64, filter model.CohortFilter) (out []model.BonusAllocation, err error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := bonus.ValidatePool(pool); err != nil {
		return nil, err
	}
	ctx, end := s.begin(ctx, OpAllocateBonus, attribute.Float64("bonus.pool", pool))
	defer end(&err)

	members, err := s.scoreCohort(ctx, OpAllocateBonus, filter)
	if err != nil {
		return nil, err
	}
	out, err = bonus.Allocate(pool, members)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		metrics.RecordBonusPool(pool)
	}
	return out, nil
}

// RankPromotions ranks the cohort and recommends the top totalSlots employees.
func (s *Service) RankPromotions(ctx context.Context, totalSlots int, filter model.CohortFilter) (out []model.PromotionCandidate, err error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := promotion.ValidateSlots(totalSlots); err != nil {
		return nil, err
	}
	ctx, end := s.begin(ctx, OpRankPromotions, attribute.Int("promotion.slots", totalSlots))
	defer end(&err)

	members, err := s.scoreCohort(ctx, OpRankPromotions, filter)
	if err != nil {
		return nil, err
	}
	return promotion.Rank(totalSlots, members)
}

// AuditBonus compares human bonus amounts with the engine's allocation and
// persists the result as an audit record.
func (s *Service) AuditBonus(ctx context.Context, req BonusAuditRequest) (rec model.AuditRecord, err error) {
	if err := s.ready(); err != nil {
		return model.AuditRecord{}, err
	}
	if err := bonus.ValidatePool(req.Pool); err != nil {
		return model.AuditRecord{}, err
	}
	if err := audit.ValidateBonusAmounts(req.Amounts); err != nil {
		return model.AuditRecord{}, err
	}
	ctx, end := s.begin(ctx, OpAuditBonus, attribute.String("audit.name", req.Name))
	defer end(&err)

	return s.idempotent(ctx, model.DecisionBonus, req.IdempotencyKey, func() (model.AuditRecord, error) {
		members, err := s.scoreCohort(ctx, OpAuditBonus, req.Scope)
		if err != nil {
			return model.AuditRecord{}, err
		}
		allocations, err := bonus.Allocate(req.Pool, members)
		if err != nil {
			return model.AuditRecord{}, err
		}
		s.warnUnmatched(ctx, keysOf(req.Amounts), members)
		entries := audit.CompareBonus(req.Amounts, allocations)
		return s.persist(ctx, model.DecisionBonus, req.Name, req.Scope, entries)
	})
}

// AuditPromotion compares human promotion decisions with the engine's ranking
// for the same number of slots and persists the result as an audit record.
func (s *Service) AuditPromotion(ctx context.Context, req PromotionAuditRequest) (rec model.AuditRecord, err error) {
	if err := s.ready(); err != nil {
		return model.AuditRecord{}, err
	}
	if err := audit.ValidatePromotionDecisions(req.Decisions); err != nil {
		return model.AuditRecord{}, err
	}
	ctx, end := s.begin(ctx, OpAuditPromotion, attribute.String("audit.name", req.Name))
	defer end(&err)

	return s.idempotent(ctx, model.DecisionPromotion, req.IdempotencyKey, func() (model.AuditRecord, error) {
		members, err := s.scoreCohort(ctx, OpAuditPromotion, req.Scope)
		if err != nil {
			return model.AuditRecord{}, err
		}
		s.warnUnmatched(ctx, keysOf(req.Decisions), members)

		// Slots come from promotions inside the cohort only.
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.Employee.ID
		}
		decisions := audit.ScopeDecisions(req.Decisions, ids)
		slots := audit.ImpliedSlots(decisions)
		if slots == 0 {
			return model.AuditRecord{}, audit.ErrNoPromotions
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("promotion.slots", slots))

		ranked, err := promotion.Rank(slots, members)
		if err != nil {
			return model.AuditRecord{}, err
		}
		entries := audit.ComparePromotion(decisions, ranked)
		return s.persist(ctx, model.DecisionPromotion, req.Name, req.Scope, entries)
	})
}

// idempotent runs create at most once per key. A retried key returns the
// record the first call produced; a failed first call frees the key.
func (s *Service) idempotent(ctx context.Context, kind model.DecisionType, key string, create func() (model.AuditRecord, error)) (model.AuditRecord, error) {
	if key == "" {
		return create()
	}
	scoped := string(kind) + ":" + key

	recordID, claimed := s.deduper.Claim(ctx, scoped)
	if !claimed {
		if recordID == "" {
			return model.AuditRecord{}, ErrSubmissionInFlight
		}
		metrics.RecordIdempotentReplay()
		s.logger.Info(ctx, "idempotent replay", logger.String("record_id", recordID))
		return s.audits.GetRecord(ctx, recordID)
	}

	rec, err := create()
	if err != nil {
		s.deduper.Release(ctx, scoped)
		return model.AuditRecord{}, err
	}
	s.deduper.Complete(ctx, scoped, rec.ID)
	return rec, nil
}

func (s *Service) persist(ctx context.Context, kind model.DecisionType, name string, scope model.CohortFilter, entries []model.AuditEntry) (model.AuditRecord, error) {
	created := s.now().UTC()
	if name == "" {
		name = fmt.Sprintf("%s audit %s", kind, created.Format(time.RFC3339))
	}
	rec := model.AuditRecord{
		ID:                    s.newID(),
		Name:                  name,
		DecisionType:          kind,
		DepartmentID:          scope.DepartmentScope(),
		TotalEmployeesAudited: len(entries),
		AgreementScore:        audit.AgreementScore(entries),
		CreatedAt:             created,
		Entries:               entries,
	}
	for i := range rec.Entries {
		rec.Entries[i].ID = s.newID()
		rec.Entries[i].RecordID = rec.ID
	}

	if err := s.audits.SaveRecord(ctx, rec); err != nil {
		return model.AuditRecord{}, fmt.Errorf("save audit record: %w", err)
	}

	flagged := rec.FlaggedCount()
	metrics.RecordAudit(string(kind), len(entries), flagged, rec.AgreementScore)
	s.logger.Info(ctx, "audit recorded",
		logger.String("record_id", rec.ID),
		logger.String("decision_type", string(kind)),
		logger.Int("entries", len(entries)),
		logger.Int("flagged", flagged),
		logger.Float64("agreement_score", rec.AgreementScore),
	)
	return rec, nil
}

// warnUnmatched logs human decisions for employees outside the audited cohort.
// They cannot be compared and are left out of the record.
func (s *Service) warnUnmatched(ctx context.Context, humanIDs []string, members []cohort.Member) {
	in := make(map[string]struct{}, len(members))
	for _, m := range members {
		in[m.Employee.ID] = struct{}{}
	}
	var unmatched []string
	for _, id := range humanIDs {
		if _, ok := in[id]; !ok {
			unmatched = append(unmatched, id)
		}
	}
	if len(unmatched) > 0 {
		s.logger.Warn(ctx, "human decisions for employees outside the cohort were ignored",
			logger.Int("count", len(unmatched)),
			logger.Any("employee_ids", unmatched),
		)
	}
}

// SetFlag marks an audit entry for review. It is idempotent and there is no
// operation that clears a flag.
func (s *Service) SetFlag(ctx context.Context, entryID string) (entry model.AuditEntry, err error) {
	if err := s.ready(); err != nil {
		return model.AuditEntry{}, err
	}
	ctx, end := s.begin(ctx, OpSetFlag, attribute.String("entry.id", entryID))
	defer end(&err)

	entry, changed, err := s.audits.SetFlag(ctx, entryID)
	if err != nil {
		return model.AuditEntry{}, err
	}
	if changed {
		metrics.RecordFlagTransition(metrics.FlagResultSet)
		s.logger.Info(ctx, "audit entry flagged",
			logger.String("entry_id", entryID),
			logger.String("record_id", entry.RecordID),
		)
	} else {
		metrics.RecordFlagTransition(metrics.FlagResultNoop)
	}
	return entry, nil
}

// GetAuditRecord returns a persisted record with its entries.
func (s *Service) GetAuditRecord(ctx context.Context, id string) (model.AuditRecord, error) {
	if err := s.ready(); err != nil {
		return model.AuditRecord{}, err
	}
	return s.audits.GetRecord(ctx, id)
}

// ListAuditRecords returns up to limit records, newest first. limit is capped
// at the configured maximum.
func (s *Service) ListAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	return s.audits.ListRecords(ctx, min(limit, s.maxListLimit))
}

// MaxListLimit returns the cap applied by ListAuditRecords.
func (s *Service) MaxListLimit() int {
	return s.maxListLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"scoringConcurrency": s.concurrency,
		"computations":       s.computations.Load(),
		"failures":           s.failures.Load(),
		"idempotencyKeys":    s.deduper.Size(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		if n, err := s.audits.CountRecords(context.Background()); err == nil {
			stats["auditRecords"] = n
		}
	}
	return stats
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
