// Package repository defines the input and audit stores and their implementations.
package repository

import (
	"context"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// RatingSource reads the organizational inputs scoring runs over.
// All lists are ordered by id so cohorts are deterministic.
type RatingSource interface {
	// FetchEmployee returns ErrNotFound if the employee is unknown.
	FetchEmployee(ctx context.Context, id string) (model.Employee, error)
	FetchEmployees(ctx context.Context, filter model.CohortFilter) ([]model.Employee, error)
	FetchProjects(ctx context.Context) ([]model.Project, error)
	FetchTasks(ctx context.Context, projectIDs []string) ([]model.Task, error)
	FetchRatings(ctx context.Context, projectIDs []string) (model.RatingSet, error)
}

// AuditStore persists audit records and the one-way entry flag.
type AuditStore interface {
	// SaveRecord stores a record and all of its entries atomically.
	SaveRecord(ctx context.Context, rec model.AuditRecord) error
	// GetRecord returns a record with entries in their stored order.
	GetRecord(ctx context.Context, id string) (model.AuditRecord, error)
	// ListRecords returns up to limit records, newest first, without entries.
	ListRecords(ctx context.Context, limit int) ([]model.AuditRecord, error)
	// SetFlag marks an entry flagged. changed is false when it already was.
	SetFlag(ctx context.Context, entryID string) (entry model.AuditEntry, changed bool, err error)
	CountRecords(ctx context.Context) (int64, error)
}

// Importer replaces the input data with a dataset.
type Importer interface {
	Import(ctx context.Context, ds model.Dataset) error
}

// Store is everything the service needs from persistence.
type Store interface {
	RatingSource
	AuditStore
	Importer
	Close() error
}
