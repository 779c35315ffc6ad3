// Package notify derives the "new listings" feed from the cached jobs.
package notify

import (
	"log/slog"
	"sync"

	"jobmate/board-client/internal/model"
)

// Projector remembers, per user, which job ids have been seen.
// Acknowledgment only grows.
type Projector struct {
	mu    sync.Mutex
	acked map[string]map[string]struct{}
}

func NewProjector() *Projector {
	return &Projector{acked: make(map[string]map[string]struct{})}
}

// Feed returns the jobs userID has not acknowledged, in input order.
// Jobs without an id are left out.
func (p *Projector) Feed(userID string, jobs []model.Job) []model.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedLocked(userID, jobs)
}

func (p *Projector) feedLocked(userID string, jobs []model.Job) []model.Job {
	seen := p.acked[userID]
	out := []model.Job{}
	for _, j := range jobs {
		if j.ID == "" {
			slog.Warn("notify: job without id skipped", "title", j.Title)
			continue
		}
		if _, ok := seen[j.ID]; ok {
			continue
		}
		out = append(out, j)
	}
	return out
}

// HasUnread reports whether Feed would return anything.
func (p *Projector) HasUnread(userID string, jobs []model.Job) bool {
	return len(p.Feed(userID, jobs)) > 0
}

// Open returns the feed and then acknowledges every job currently present.
func (p *Projector) Open(userID string, jobs []model.Job) []model.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	feed := p.feedLocked(userID, jobs)

	seen, ok := p.acked[userID]
	if !ok {
		seen = make(map[string]struct{}, len(jobs))
		p.acked[userID] = seen
	}
	for _, j := range feed {
		seen[j.ID] = struct{}{}
	}
	return feed
}
