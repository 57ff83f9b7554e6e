package cache

import (
	"context"
	"sync"
	"time"

	"regauth/internal/models"
)

// sweepEvery bounds how often Add scans for expired entries.
const sweepEvery = time.Minute

// Memory is a process-local VerificationCache.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]models.PendingRegistration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]models.PendingRegistration),
		now:     time.Now,
	}
}

func (m *Memory) Add(_ context.Context, code string, p models.PendingRegistration, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	if cur, ok := m.entries[code]; ok && !cur.Expired(now) {
		return ErrExists
	}
	p.CreatedAt = now
	p.ExpiresAt = now.Add(ttl)
	m.entries[code] = p
	return nil
}

func (m *Memory) Get(_ context.Context, code string) (*models.PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.entries[code]
	if !ok {
		return nil, ErrMiss
	}
	if p.Expired(m.now()) {
		delete(m.entries, code)
		return nil, ErrMiss
	}
	return &p, nil
}

func (m *Memory) Take(_ context.Context, code string) (*models.PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.entries[code]
	if !ok {
		return nil, ErrMiss
	}
	delete(m.entries, code)
	if p.Expired(m.now()) {
		return nil, ErrMiss
	}
	return &p, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now
	for code, p := range m.entries {
		if p.Expired(now) {
			delete(m.entries, code)
		}
	}
}
