// Package dedupe makes audit submissions idempotent by remembering which
// record each client-supplied idempotency key produced.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 10_000

// Deduper tracks idempotency keys for submissions that create records.
type Deduper interface {
	// Claim atomically reserves key for a new submission. It returns claimed=true
	// when the caller owns the key and must later Complete or Release it.
	// Otherwise it returns the record id the key already produced, which is ""
	// while the first submission is still in flight.
	Claim(ctx context.Context, key string) (recordID string, claimed bool)

	// Complete binds a claimed key to the record it produced.
	Complete(ctx context.Context, key, recordID string)

	// Release drops a claimed key so the submission can be retried after a failure.
	Release(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key      string
	recordID string
}

// inMemoryDeduper keeps at most maxSize completed keys and evicts the oldest
// first. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		keys:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		return el.Value.(*entry).recordID, false
	}

	for d.maxSize > 0 && d.order.Len() >= d.maxSize {
		if !d.evictOldestCompleted() {
			break
		}
	}
	d.keys[key] = d.order.PushBack(&entry{key: key})
	d.size.Add(1)
	return "", true
}

func (d *inMemoryDeduper) Complete(_ context.Context, key, recordID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		el.Value.(*entry).recordID = recordID
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
		d.size.Add(-1)
	}
}

// evictOldestCompleted drops the oldest key that already produced a record.
// In-flight keys are never evicted, so the set may exceed maxSize while more
// than maxSize submissions run at once. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldestCompleted() bool {
	for el := d.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if e.recordID == "" {
			continue
		}
		d.order.Remove(el)
		delete(d.keys, e.key)
		d.size.Add(-1)
		return true
	}
	return false
}

// Size returns the current number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
