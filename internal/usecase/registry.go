package usecase

import (
	"context"
	"sync"
	"time"
)

// Registry hands out sessions by id. Each session is rehydrated on first use
// and then kept in memory, so a failed save never loses state for the life
// of the process. Operations on one session run one at a time; different
// sessions run in parallel.
type Registry struct {
	deps SessionDeps

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *Session
	ready    bool
	evicted  bool
	lastUsed time.Time
}

func NewRegistry(deps SessionDeps) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*sessionEntry),
	}
}

// Do runs fn with the session locked.
func (r *Registry) Do(ctx context.Context, id string, fn func(*Session) (Result, error)) (Result, error) {
	var e *sessionEntry
	for {
		e = r.entry(id)
		e.mu.Lock()
		if !e.evicted {
			break
		}
		e.mu.Unlock()
	}
	defer e.mu.Unlock()

	if !e.ready {
		e.session.Rehydrate(ctx)
		e.ready = true
	}
	e.lastUsed = r.deps.Now()
	return fn(e.session)
}

// EvictIdle drops sessions unused for longer than maxIdle. An evicted session
// is rebuilt from its snapshots on next use.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.deps.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.ready && e.lastUsed.Before(cutoff) {
			e.evicted = true
			delete(r.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// RunEviction sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.EvictIdle(maxIdle)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) entry(id string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &sessionEntry{session: NewSession(id, r.deps)}
		r.sessions[id] = e
	}
	return e
}
