package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"maps"
	"sync"

	"github.com/target/catalog-admin/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.KVStore = (*MemoryKV)(nil)

// MemoryKV is an in-memory KVStore for unit tests.
// The *Func hooks, when set, run before the default behavior and may inject failures.
type MemoryKV struct {
	GetFunc    func(ctx context.Context, key string) error
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error

	mu      sync.Mutex
	data    map[string]string
	sets    int
	removes int
}

// NewMemoryKV creates a MemoryKV optionally seeded with values.
func NewMemoryKV(seed map[string]string) *MemoryKV {
	data := make(map[string]string, len(seed))
	maps.Copy(data, seed)
	return &MemoryKV{data: data}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		if err := m.GetFunc(ctx, key); err != nil {
			return "", err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		if err := m.SetFunc(ctx, key, value); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	m.sets++
	return nil
}

func (m *MemoryKV) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		if err := m.RemoveFunc(ctx, key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.removes++
	return nil
}

// Snapshot returns a copy of the stored values.
func (m *MemoryKV) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.data)
}

// Has reports whether key is present.
func (m *MemoryKV) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// Counts returns the number of successful Set and Remove calls.
func (m *MemoryKV) Counts() (sets, removes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets, m.removes
}
