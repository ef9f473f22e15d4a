package storage

import (
	"context"
	"sync"
)

// Memory keeps values in process memory. Data is lost on restart.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	fail   map[string]error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string), fail: make(map[string]error)}
}

// FailNext makes the next call of op ("get", "set" or "delete") return err.
func (m *Memory) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

func (m *Memory) takeFailure(op string) error {
	err, ok := m.fail[op]
	if ok {
		delete(m.fail, op)
	}
	return err
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("get"); err != nil {
		return "", false, err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("set"); err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("delete"); err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
