package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionCompleted is returned by Upsert when the targeted session has
// already reached its terminal state. Completed records are immutable.
var ErrSessionCompleted = errors.New("session already completed")

// Record is the latest known state of one session.
type Record struct {
	SessionID   string     `json:"session_id"`
	Status      Status     `json:"status"`
	Poem        string     `json:"poem,omitempty"` // set only when completed
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Clone returns a copy of the Record, duplicating pointer fields so the copy
// can be mutated independently of the original.
func (r *Record) Clone() *Record {
	c := *r
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Store holds the latest Record per session ID. All methods are safe for
// concurrent use; records are copied in and out.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Upsert creates or overwrites the record for id. It fails with
// ErrSessionCompleted if the existing record is terminal.
func (s *Store) Upsert(id string, status Status, poem string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[id]; ok && existing.Status.Terminal() {
		return nil, ErrSessionCompleted
	}

	now := s.now()
	rec := &Record{
		SessionID: id,
		Status:    status,
		Poem:      poem,
		UpdatedAt: now,
	}
	if status.Terminal() {
		t := now
		rec.CompletedAt = &t
	}
	s.records[id] = rec
	return rec.Clone(), nil
}

func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.records {
		if rec.Status.Terminal() {
			count++
		}
	}
	return count
}

// Sweep evicts completed records older than retainCompleted and
// non-terminal records idle longer than retainAbandoned. A zero duration
// disables that class of eviction. Returns the number of records removed.
func (s *Store) Sweep(now time.Time, retainCompleted, retainAbandoned time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		var cutoff time.Duration
		switch {
		case rec.Status.Terminal():
			cutoff = retainCompleted
		default:
			cutoff = retainAbandoned
		}
		if cutoff <= 0 {
			continue
		}
		if now.Sub(rec.UpdatedAt) > cutoff {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// RunSweeper periodically sweeps until ctx is cancelled. onSweep, if
// non-nil, is called with the eviction count after each sweep that removed
// at least one record.
func (s *Store) RunSweeper(ctx context.Context, interval, retainCompleted, retainAbandoned time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(s.now(), retainCompleted, retainAbandoned); removed > 0 && onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
