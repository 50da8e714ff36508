package storage

import (
	"context"
	"sync"

	"github.com/brimdata/airindex/aie"
	"golang.org/x/exp/slices"
)

// Memory is an in-process segment store.  It simulates a remote backend for
// tests and benchmarks and is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]*memObject
}

type memObject struct {
	data   []byte
	blocks int
	sealed bool
}

var _ Engine = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]*memObject)}
}

func (m *Memory) Open(context.Context, map[string]string) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) lookup(u *URI) (*memObject, error) {
	o, ok := m.objects[u.String()]
	if !ok {
		return nil, aie.E(aie.NotFound, u.String())
	}
	return o, nil
}

func (m *Memory) Create(_ context.Context, u *URI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[u.String()]; ok {
		return ErrExists
	}
	m.objects[u.String()] = &memObject{}
	return nil
}

func (m *Memory) Remove(_ context.Context, u *URI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.lookup(u); err != nil {
		return err
	}
	delete(m.objects, u.String())
	return nil
}

func (m *Memory) GetSize(_ context.Context, u *URI) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(u)
	if err != nil {
		return 0, err
	}
	return int64(len(o.data)), nil
}

func (m *Memory) GetProps(_ context.Context, u *URI) (Props, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(u)
	if err != nil {
		return Props{}, err
	}
	return Props{SegmentLength: int64(len(o.data)), BlockCount: o.blocks, Sealed: o.sealed}, nil
}

func (m *Memory) Seal(_ context.Context, u *URI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(u)
	if err != nil {
		return err
	}
	o.sealed = true
	return nil
}

func (m *Memory) Append(_ context.Context, u *URI, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(u)
	if err != nil {
		return 0, err
	}
	if o.sealed {
		return 0, ErrSealed
	}
	o.data = append(o.data, b...)
	o.blocks++
	return o.blocks - 1, nil
}

func (m *Memory) ReadAll(_ context.Context, u *URI) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(u)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), o.data...), nil
}

func (m *Memory) ReadRange(_ context.Context, u *URI, offset, length int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(u)
	if err != nil {
		return nil, err
	}
	if err := checkRange(int64(len(o.data)), offset, length); err != nil {
		return nil, err
	}
	return append([]byte(nil), o.data[offset:offset+length]...), nil
}

func (m *Memory) WriteAll(_ context.Context, u *URI, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.objects[u.String()]; ok && o.sealed {
		return ErrSealed
	}
	m.objects[u.String()] = &memObject{data: append([]byte(nil), b...), blocks: 1}
	return nil
}

// Corrupt replaces the contents of an object regardless of its seal.
// It exists so tests can simulate media corruption.
func (m *Memory) Corrupt(u *URI, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(u)
	if err != nil {
		return err
	}
	o.data = append([]byte(nil), b...)
	return nil
}

// List returns the URIs of all objects in lexical order of their string form.
func (m *Memory) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
