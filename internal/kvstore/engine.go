// Package kvstore implements store.Store on top of a plain key-value engine.
//
// Each collection (users, stories, bookmarks, release marks) is kept as one JSON
// array under its own key, with a separate counter key per collection for ids.
// A process-wide mutex makes every operation atomic over the collections it
// touches, so the bookmark join is always read from one snapshot.
package kvstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Engine is the minimal key-value contract the store needs.
type Engine interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// MemoryEngine keeps everything in process memory. Used for tests and for
// throwaway sessions where nothing should touch disk.
type MemoryEngine struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

func (m *MemoryEngine) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryEngine) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryEngine) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryEngine) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if v, ok := m.data[key]; ok {
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("incr %s: value is not an integer: %w", key, err)
		}
		n = parsed
	}
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *MemoryEngine) Close() error { return nil }
