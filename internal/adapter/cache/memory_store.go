package cache

import (
	"context"
	"sync"

	"github.com/duality-2/SilkRoad/internal/usecase"
)

// MemorySnapshotStore is the process-local store used when no redis or
// mysql is configured. Snapshots do not survive a restart.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: make(map[string][]byte)}
}

func (m *MemorySnapshotStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemorySnapshotStore) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), blob...)
	return nil
}

// MemoryPaymentLock is the single-process PaymentLock.
type MemoryPaymentLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryPaymentLock() *MemoryPaymentLock {
	return &MemoryPaymentLock{held: make(map[string]struct{})}
}

func (m *MemoryPaymentLock) TryLock(_ context.Context, scope string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[scope]; ok {
		return false, nil
	}
	m.held[scope] = struct{}{}
	return true, nil
}

func (m *MemoryPaymentLock) Unlock(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, scope)
	return nil
}

var (
	_ usecase.SnapshotStore = (*MemorySnapshotStore)(nil)
	_ usecase.PaymentLock   = (*MemoryPaymentLock)(nil)
)
