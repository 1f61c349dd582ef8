package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/itsjustRohitch/ResourceScout/models"
)

// Memory is the in-process backend: process lifetime, no eviction. Entries
// are stored as marshalled JSON so a hit returns a byte-identical copy of
// the prior output, untouched by later callers.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) (*models.ResourceResult, bool) {
	m.mu.RLock()
	raw, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var res models.ResourceResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (m *Memory) Set(ctx context.Context, key string, res *models.ResourceResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
