package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	subject    string
	expiration time.Time
}

// Memory is an in-memory implementation of Sessions.
// Suitable for single-instance deployments and development.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stopCh  chan struct{}
}

// NewMemory creates a new in-memory store with automatic cleanup of
// expired sessions.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		stopCh:  make(chan struct{}),
	}

	go m.cleanup()
	return m
}

func (m *Memory) Get(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	entry, exists := m.entries[id]
	m.mu.RUnlock()

	if !exists || time.Now().After(entry.expiration) {
		return "", ErrNotFound
	}
	return entry.subject, nil
}

func (m *Memory) Set(_ context.Context, id, subject string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{
		subject:    subject,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Close stops the cleanup goroutine.
func (m *Memory) Close() error {
	close(m.stopCh)
	return nil
}

func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Memory) removeExpired() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.entries {
		if now.After(entry.expiration) {
			delete(m.entries, id)
		}
	}
}
