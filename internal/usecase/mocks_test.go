package usecase

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memStore struct {
	m       sync.Mutex
	data    map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	b, ok := s.data[key]
	return b, ok, nil
}

func (s *memStore) Save(_ context.Context, key string, blob []byte) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = append([]byte(nil), blob...)
	return nil
}

func (s *memStore) get(key string) (string, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	b, ok := s.data[key]
	return string(b), ok
}

func (s *memStore) put(key, blob string) {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = []byte(blob)
}

type memLock struct {
	m       sync.Mutex
	held    map[string]bool
	lockErr error
}

func newMemLock() *memLock {
	return &memLock{held: map[string]bool{}}
}

func (l *memLock) TryLock(_ context.Context, scope string) (bool, error) {
	l.m.Lock()
	defer l.m.Unlock()
	if l.lockErr != nil {
		return false, l.lockErr
	}
	if l.held[scope] {
		return false, nil
	}
	l.held[scope] = true
	return true, nil
}

func (l *memLock) Unlock(_ context.Context, scope string) error {
	l.m.Lock()
	defer l.m.Unlock()
	delete(l.held, scope)
	return nil
}

func (l *memLock) isHeld(scope string) bool {
	l.m.Lock()
	defer l.m.Unlock()
	return l.held[scope]
}

type recordingPublisher struct {
	m        sync.Mutex
	orders   []OrderConfirmedMsg
	activity []CartActivityMsg
	err      error
}

func (p *recordingPublisher) PublishOrderConfirmed(_ context.Context, msg OrderConfirmedMsg) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.orders = append(p.orders, msg)
	return p.err
}

func (p *recordingPublisher) PublishCartActivity(_ context.Context, msg CartActivityMsg) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.activity = append(p.activity, msg)
	return p.err
}

type recordingMetrics struct {
	m            sync.Mutex
	mutations    map[string]int
	confirmed    int
	revenue      int64
	payments     map[string]int
	lookups      int
	saveFailures int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{mutations: map[string]int{}, payments: map[string]int{}}
}

func (r *recordingMetrics) CartMutated(op string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.mutations[op]++
}

func (r *recordingMetrics) OrderConfirmed(total int64) {
	r.m.Lock()
	defer r.m.Unlock()
	r.confirmed++
	r.revenue += total
}

func (r *recordingMetrics) PaymentProcessed(result string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.payments[result]++
}

func (r *recordingMetrics) TrackingLookup(string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.lookups++
}

func (r *recordingMetrics) SnapshotSaveFailed(string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.saveFailures++
}

var errStoreDown = errors.New("store unavailable")

var fixedNow = time.Date(2025, 9, 14, 10, 0, 0, 0, time.UTC)

func testDeps(store SnapshotStore) SessionDeps {
	return SessionDeps{
		Store:     store,
		KeyPrefix: "test",
		Now:       func() time.Time { return fixedNow },
	}
}
