// Package events publishes committed mutations so other processes can
// refresh their caches.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelEntityChanged is the Redis channel every committed mutation is
// published on.
const ChannelEntityChanged = "EVENT_ENTITY_CHANGED"

// Event describes one committed mutation.
type Event struct {
	Type       string    `json:"type"`
	MutationID string    `json:"mutationId"`
	Op         string    `json:"op"`
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entityId"`
	At         time.Time `json:"at"`
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// RedisPublisher publishes JSON events on ChannelEntityChanged.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Type == "" {
		ev.Type = ChannelEntityChanged
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, ChannelEntityChanged, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelEntityChanged, err)
	}
	return nil
}

// ─── In-process ──────────────────────────────────────────────────────────────

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
