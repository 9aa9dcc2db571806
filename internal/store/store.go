// Package store persists a device's round and history log in a small
// key-value namespace, using the same keys and encodings as the browser's
// local storage: "date", "guesses" and "results".
package store

import (
	"context"
	"errors"
	"sync"
)

const (
	KeyDate    = "date"
	KeyGuesses = "guesses"
	KeyResults = "results"
)

var ErrInvalidDeviceID = errors.New("invalid device ID format")

// ErrCorrupt marks stored values that can be read but not decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// KV is one device's key-value namespace. Writes are last-writer-wins per key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Backend hands out per-device namespaces.
type Backend interface {
	Device(id string) (KV, error)
	Close() error
}

// Memory keeps every device in process memory.
type Memory struct {
	mu      sync.RWMutex
	devices map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[string]map[string]string)}
}

func (m *Memory) Device(id string) (KV, error) {
	if id == "" {
		return nil, ErrInvalidDeviceID
	}
	return &memoryKV{m: m, id: id}, nil
}

func (m *Memory) Close() error { return nil }

type memoryKV struct {
	m  *Memory
	id string
}

func (kv *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.m.mu.RLock()
	defer kv.m.mu.RUnlock()
	v, ok := kv.m.devices[kv.id][key]
	return v, ok, nil
}

func (kv *memoryKV) Set(_ context.Context, key, value string) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()
	d, ok := kv.m.devices[kv.id]
	if !ok {
		d = make(map[string]string)
		kv.m.devices[kv.id] = d
	}
	d[key] = value
	return nil
}

func (kv *memoryKV) Delete(_ context.Context, keys ...string) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()
	for _, k := range keys {
		delete(kv.m.devices[kv.id], k)
	}
	return nil
}
