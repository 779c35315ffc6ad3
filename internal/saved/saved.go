// Package saved tracks the jobs each user has bookmarked. Entries hold a
// snapshot of the job taken at save time and outlive the job's presence in
// the store.
package saved

import (
	"context"
	"log/slog"
	"sync"

	"jobmate/board-client/internal/model"
)

// Persister stores saved entries outside the process. Implementations are
// optional; the set works memory-only without one.
type Persister interface {
	Load(ctx context.Context) ([]Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, userID, jobID string) error
}

// Entry is a single (user, job) bookmark.
type Entry struct {
	UserID string
	Job    model.Job
}

type userSet struct {
	order []string
	byID  map[string]model.Job
}

// Set is the per-user saved-job set.
type Set struct {
	mu    sync.RWMutex
	users map[string]*userSet

	// pmu is held from a memory change through its persister write so the
	// persister sees writes in the same order as memory.
	pmu sync.Mutex
	p   Persister
}

// New returns an empty memory-only Set.
func New() *Set {
	return &Set{users: make(map[string]*userSet)}
}

// Open returns a Set backed by p, pre-filled with what p already holds.
func Open(ctx context.Context, p Persister) (*Set, error) {
	s := New()
	entries, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		s.insert(e.UserID, e.Job)
	}
	s.p = p
	return s, nil
}

// insert adds job under userID unless present. Caller must not hold mu.
func (s *Set) insert(userID string, job model.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, ok := s.users[userID]
	if !ok {
		us = &userSet{byID: make(map[string]model.Job)}
		s.users[userID] = us
	}
	if _, dup := us.byID[job.ID]; dup {
		return false
	}
	us.order = append(us.order, job.ID)
	us.byID[job.ID] = job.Clone()
	return true
}

// Add saves a snapshot of job for userID. A second Add of the same job is a
// no-op. Reports whether an entry was inserted.
func (s *Set) Add(userID string, job model.Job) bool {
	if userID == "" || job.ID == "" {
		return false
	}
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if !s.insert(userID, job) {
		return false
	}
	if s.p != nil {
		if err := s.p.Put(context.Background(), Entry{UserID: userID, Job: job}); err != nil {
			slog.Warn("saved: persist failed", "user", userID, "job", job.ID, "err", err)
		}
	}
	return true
}

// Remove drops the entry for (userID, jobID). Absent entries are ignored.
func (s *Set) Remove(userID, jobID string) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	s.mu.Lock()
	us, ok := s.users[userID]
	removed := false
	if ok {
		if _, present := us.byID[jobID]; present {
			delete(us.byID, jobID)
			for i, id := range us.order {
				if id == jobID {
					us.order = append(us.order[:i:i], us.order[i+1:]...)
					break
				}
			}
			removed = true
		}
	}
	s.mu.Unlock()

	if removed && s.p != nil {
		if err := s.p.Delete(context.Background(), userID, jobID); err != nil {
			slog.Warn("saved: delete failed", "user", userID, "job", jobID, "err", err)
		}
	}
	return removed
}

// List returns userID's saved snapshots in the order they were saved.
func (s *Set) List(userID string) []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	us, ok := s.users[userID]
	if !ok {
		return []model.Job{}
	}
	out := make([]model.Job, 0, len(us.order))
	for _, id := range us.order {
		out = append(out, us.byID[id].Clone())
	}
	return out
}

// IsSaved reports whether userID has saved jobID.
func (s *Set) IsSaved(userID, jobID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	us, ok := s.users[userID]
	if !ok {
		return false
	}
	_, ok = us.byID[jobID]
	return ok
}
