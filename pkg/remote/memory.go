package remote

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend. Watchers are called synchronously
// from Set, after the value is stored, in registration order.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string][]byte
	watchers map[string][]*memoryWatcher
}

type memoryWatcher struct {
	fn      func([]byte)
	stopped bool
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data:     map[string][]byte{},
		watchers: map[string][]*memoryWatcher{},
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	var fns []func([]byte)
	for _, w := range m.watchers[key] {
		if !w.stopped {
			fns = append(fns, w.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(append([]byte(nil), data...))
	}
	return nil
}

func (m *MemoryBackend) Watch(_ context.Context, key string, fn func([]byte)) (func(), error) {
	w := &memoryWatcher{fn: fn}
	m.mu.Lock()
	m.watchers[key] = append(m.watchers[key], w)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		w.stopped = true
		ws := m.watchers[key]
		for i, other := range ws {
			if other == w {
				m.watchers[key] = append(ws[:i:i], ws[i+1:]...)
				break
			}
		}
	}, nil
}

func (m *MemoryBackend) Close() error { return nil }
