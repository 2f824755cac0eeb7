package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Backend. Nothing survives Close.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

// Namespace returns the namespace called name.
func (m *Memory) Namespace(name string) Namespace {
	return &memoryNamespace{m: m, name: name}
}

// Close drops all data.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string][]byte)
	return nil
}

type memoryNamespace struct {
	m    *Memory
	name string
}

func (n *memoryNamespace) Get(_ context.Context, key string) ([]byte, bool, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	v, ok := n.m.data[n.name][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (n *memoryNamespace) Set(_ context.Context, key string, value []byte) error {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	ns, ok := n.m.data[n.name]
	if !ok {
		ns = make(map[string][]byte)
		n.m.data[n.name] = ns
	}
	ns[key] = slices.Clone(value)
	return nil
}

func (n *memoryNamespace) Remove(_ context.Context, key string) error {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	delete(n.m.data[n.name], key)
	return nil
}

func (n *memoryNamespace) Keys(_ context.Context) ([]string, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	keys := make([]string, 0, len(n.m.data[n.name]))
	for k := range n.m.data[n.name] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (n *memoryNamespace) Clear(_ context.Context) error {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	delete(n.m.data, n.name)
	return nil
}
