// Package repository provides the keyed record-store abstraction injected
// into the engine. The engine never owns global state; everything it needs
// to remember goes through a Store.
package repository

import (
	"context"
	"sync"
)

type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Put(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
	// List returns all values in insertion order.
	List(ctx context.Context) ([]T, error)
}

// Memory is an in-process Store. Safe for concurrent use.
type Memory[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		items: make(map[string]T),
	}
}

func (m *Memory[T]) Get(ctx context.Context, key string) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

func (m *Memory[T]) Put(ctx context.Context, key string, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[key]; !exists {
		m.order = append(m.order, key)
	}
	m.items[key] = value
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[key]; !exists {
		return nil
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([]T, 0, len(m.order))
	for _, key := range m.order {
		values = append(values, m.items[key])
	}
	return values, nil
}
