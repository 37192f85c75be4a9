// Package kv provides durable single-blob key-value stores used to mirror the cart.
//
// Every backend exposes the same contract: Get reports ok=false for an absent
// key, Set overwrites the whole value.
package kv

import (
	"context"
	"sync"
)

// Memory is a process-local store. It does not survive restarts and is meant for tests and local runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}
