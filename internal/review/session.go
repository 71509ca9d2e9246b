// Package review keeps a reviewer's local view of an audit record in step
// with the server while entries are flagged.
//
// Flag updates the local view first so a UI can reflect it at once, then
// performs the server's one-way transition. When that call fails the record
// is fetched again and replaces the local view, so the view never shows a
// state the server did not accept.
package review

import (
	"context"
	"sync"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

// Backend is the server side of a review session.
type Backend interface {
	SetFlag(ctx context.Context, entryID string) (model.AuditEntry, error)
	GetAuditRecord(ctx context.Context, id string) (model.AuditRecord, error)
}

// Session is a local view of one audit record.
type Session struct {
	mu      sync.Mutex
	backend Backend
	record  model.AuditRecord
	logger  logger.Logger
}

// Open fetches recordID from backend and starts a session over it.
func Open(ctx context.Context, backend Backend, recordID string, opts ...Option) (*Session, error) {
	s := &Session{backend: backend, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	rec, err := backend.GetAuditRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	s.record = rec
	return s, nil
}

// Record returns a copy of the current local view.
func (s *Session) Record() model.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record
	rec.Entries = append([]model.AuditEntry(nil), s.record.Entries...)
	return rec
}

// Flag marks entryID in the local view and on the server. On a server
// failure the local view is reconciled and the server's error is returned.
func (s *Session) Flag(ctx context.Context, entryID string) (model.AuditEntry, error) {
	s.mu.Lock()
	i := s.indexOf(entryID)
	if i < 0 {
		s.mu.Unlock()
		return model.AuditEntry{}, ErrUnknownEntry
	}
	recordID := s.record.ID
	prev := s.record.Entries[i].IsFlagged
	s.record.Entries[i].Flag()
	s.mu.Unlock()

	entry, err := s.backend.SetFlag(ctx, entryID)
	if err == nil {
		s.mu.Lock()
		if i := s.indexOf(entryID); i >= 0 {
			s.record.Entries[i] = entry
		}
		s.mu.Unlock()
		return entry, nil
	}

	s.logger.Warn(ctx, "flag rejected; reconciling local view",
		logger.String("record_id", recordID),
		logger.String("entry_id", entryID),
		logger.Error(err),
	)
	if rerr := s.Refresh(ctx); rerr != nil {
		s.logger.Error(ctx, "reconcile failed; restoring previous entry state",
			logger.String("entry_id", entryID),
			logger.Error(rerr),
		)
		s.mu.Lock()
		if i := s.indexOf(entryID); i >= 0 {
			s.record.Entries[i].IsFlagged = prev
		}
		s.mu.Unlock()
	}
	return model.AuditEntry{}, err
}

// Refresh replaces the local view with the server's copy of the record.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	id := s.record.ID
	s.mu.Unlock()

	rec, err := s.backend.GetAuditRecord(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
	return nil
}

// indexOf must be called with s.mu held.
func (s *Session) indexOf(entryID string) int {
	for i, e := range s.record.Entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}
