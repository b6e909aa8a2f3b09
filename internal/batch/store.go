package batch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound indicates the job does not exist or was already pruned.
var ErrNotFound = errors.New("batch job not found")

// MemoryStore keeps jobs in memory and is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Job
	now  func() time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]Job),
		now:  time.Now,
	}
}

// Create stores a new job.
func (s *MemoryStore) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[job.JobID] = job.clone()
	return nil
}

// GetByID returns a snapshot of the job. Callers may mutate the returned
// value freely.
func (s *MemoryStore) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job.clone(), nil
}

// Update applies fn to the stored job under the write lock. fn receives a
// pointer to the stored copy; changes are kept.
func (s *MemoryStore) Update(ctx context.Context, jobID string, fn func(*Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	fn(&job)
	s.byID[jobID] = job
	return nil
}

// Prune removes terminal jobs whose completion is older than retention.
// Returns how many jobs were removed.
func (s *MemoryStore) Prune(retention time.Duration) int {
	if retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.byID {
		if job.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
