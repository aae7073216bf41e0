package blobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu         sync.RWMutex
	docs       map[string][]byte
	namespaces map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		docs:       make(map[string][]byte),
		namespaces: make(map[string]map[string][]byte),
	}
}

// Seed makes a document available to Fetch.
func (m *Memory) Seed(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = data
}

func (m *Memory) Fetch(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) EnsureNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.namespaces[namespace]; !ok {
		m.namespaces[namespace] = make(map[string][]byte)
	}
	return nil
}

func (m *Memory) Put(_ context.Context, namespace, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.namespaces[namespace] = ns
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	ns[key] = stored
	return nil
}

// Get returns a stored artifact, for assertions.
func (m *Memory) Get(namespace, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, false
	}
	data, ok := ns[key]
	return data, ok
}

// Keys lists artifact keys in a namespace, sorted.
func (m *Memory) Keys(namespace string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Namespaces lists namespaces that have been created or written to.
func (m *Memory) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.namespaces))
	for ns := range m.namespaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
