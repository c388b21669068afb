package position

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process. Set notifies subscribers
// synchronously, which is how views in the same process see each other's
// changes immediately.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	subs   map[string]map[int]func(string)
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		subs:   make(map[string]map[int]func(string)),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	fns := make([]func(string), 0, len(m.subs[key]))
	for _, fn := range m.subs[key] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
	return nil
}

func (m *MemoryStore) Subscribe(key string, fn func(string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if m.subs[key] == nil {
		m.subs[key] = make(map[int]func(string))
	}
	m.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[key], id)
		})
	}
}

func (m *MemoryStore) Close() error {
	return nil
}
