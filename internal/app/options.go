package service

import (
	"time"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/dedupe"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses st both as rating source and audit store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.source = st
			s.audits = st
		}
	}
}

// WithRatingSource sets where employees, projects, tasks and ratings are read from.
func WithRatingSource(src repository.RatingSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithAuditStore sets where audit records are persisted.
func WithAuditStore(st repository.AuditStore) Option {
	return func(s *Service) {
		if st != nil {
			s.audits = st
		}
	}
}

// WithScoringConcurrency bounds how many employees are scored in parallel.
func WithScoringConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithIdempotencyCacheSize sets how many audit idempotency keys are remembered.
func WithIdempotencyCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithMaxAuditListLimit caps ListAuditRecords.
func WithMaxAuditListLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxListLimit = limit
		}
	}
}

// WithDeduper replaces the in-memory idempotency tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how record and entry ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
