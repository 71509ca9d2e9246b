package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// MemoryStore implements Store in process memory. It backs the memory driver
// and tests; all reads return copies.
type MemoryStore struct {
	mu sync.RWMutex

	employees map[string]model.Employee
	projects  map[string]model.Project
	tasks     map[string]model.Task
	ratings   model.RatingSet

	records map[string]*model.AuditRecord
	order   []string          // record ids in insertion order
	entries map[string]string // entry id -> record id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*model.AuditRecord),
		entries: make(map[string]string),
	}
	s.resetInputs()
	return s
}

func (s *MemoryStore) resetInputs() {
	s.employees = make(map[string]model.Employee)
	s.projects = make(map[string]model.Project)
	s.tasks = make(map[string]model.Task)
	s.ratings = model.RatingSet{}
}

func (s *MemoryStore) Close() error { return nil }

// Import replaces the input data with ds. Audit records are kept.
func (s *MemoryStore) Import(_ context.Context, ds model.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetInputs()
	for _, e := range ds.Employees {
		s.employees[e.ID] = e
	}
	for _, p := range ds.Projects {
		s.projects[p.ID] = p
	}
	for _, t := range ds.Tasks {
		t.AssigneeIDs = slices.Clone(t.AssigneeIDs)
		s.tasks[t.ID] = t
	}
	s.ratings = model.RatingSet{
		Manager: slices.Clone(ds.ManagerRatings),
		Peer:    slices.Clone(ds.PeerRatings),
		KPI:     slices.Clone(ds.KPIs),
	}
	return nil
}

func (s *MemoryStore) FetchEmployee(_ context.Context, id string) (model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return model.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *MemoryStore) FetchEmployees(_ context.Context, filter model.CohortFilter) ([]model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Employee, 0, len(s.employees))
	for _, id := range sortedKeys(s.employees) {
		if e := s.employees[id]; filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) FetchProjects(_ context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Project, 0, len(s.projects))
	for _, id := range sortedKeys(s.projects) {
		out = append(out, s.projects[id])
	}
	return out, nil
}

func (s *MemoryStore) FetchTasks(_ context.Context, projectIDs []string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Task{}
	for _, id := range sortedKeys(s.tasks) {
		t := s.tasks[id]
		if slices.Contains(projectIDs, t.ProjectID) {
			t.AssigneeIDs = slices.Clone(t.AssigneeIDs)
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) FetchRatings(_ context.Context, projectIDs []string) (model.RatingSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in := func(projectID string) bool { return slices.Contains(projectIDs, projectID) }
	set := model.RatingSet{Manager: []model.Rating{}, Peer: []model.Rating{}, KPI: []model.KPIRecord{}}
	for _, r := range s.ratings.Manager {
		if in(r.ProjectID) {
			set.Manager = append(set.Manager, r)
		}
	}
	for _, r := range s.ratings.Peer {
		if in(r.ProjectID) {
			set.Peer = append(set.Peer, r)
		}
	}
	for _, k := range s.ratings.KPI {
		if in(k.ProjectID) {
			set.KPI = append(set.KPI, k)
		}
	}
	return set, nil
}

func (s *MemoryStore) SaveRecord(_ context.Context, rec model.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("record %s: %w", rec.ID, ErrDuplicateRecord)
	}
	stored := copyRecord(rec)
	for i := range stored.Entries {
		stored.Entries[i].RecordID = rec.ID
		s.entries[stored.Entries[i].ID] = rec.ID
	}
	s.records[rec.ID] = &stored
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, id string) (model.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return model.AuditRecord{}, fmt.Errorf("audit record %s: %w", id, ErrNotFound)
	}
	return copyRecord(*rec), nil
}

func (s *MemoryStore) ListRecords(_ context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Clone(s.order)
	// Newest first; insertion order breaks ties on equal timestamps.
	slices.Reverse(ids)
	slices.SortStableFunc(ids, func(a, b string) int {
		return s.records[b].CreatedAt.Compare(s.records[a].CreatedAt)
	})

	out := make([]model.AuditRecord, 0, min(limit, len(ids)))
	for _, id := range ids[:min(limit, len(ids))] {
		r := *s.records[id]
		r.Entries = nil
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) SetFlag(_ context.Context, entryID string) (model.AuditEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recID, ok := s.entries[entryID]
	if !ok {
		return model.AuditEntry{}, false, fmt.Errorf("audit entry %s: %w", entryID, ErrNotFound)
	}
	rec := s.records[recID]
	for i := range rec.Entries {
		if rec.Entries[i].ID == entryID {
			changed := rec.Entries[i].Flag()
			return rec.Entries[i], changed, nil
		}
	}
	return model.AuditEntry{}, false, fmt.Errorf("audit entry %s: %w", entryID, ErrNotFound)
}

func (s *MemoryStore) CountRecords(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func copyRecord(r model.AuditRecord) model.AuditRecord {
	r.Entries = slices.Clone(r.Entries)
	return r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
