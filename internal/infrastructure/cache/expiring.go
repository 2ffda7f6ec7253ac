package cache

import (
	"sync"
	"time"
)

type expiringEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// expiringMap is the process-local backing of the in-memory stores. Reads
// treat expired entries as absent and a background sweep deletes them.
type expiringMap[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]expiringEntry[V]
	now     func() time.Time

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newExpiringMap[K comparable, V any](sweepEvery time.Duration) *expiringMap[K, V] {
	m := &expiringMap[K, V]{
		entries: make(map[K]expiringEntry[V]),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweep(sweepEvery)
	return m
}

func (m *expiringMap[K, V]) get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *expiringMap[K, V]) put(key K, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = expiringEntry[V]{value: value, expiresAt: m.now().Add(ttl)}
}

// putIfAbsent stores value unless a live entry exists and reports whether it did
func (m *expiringMap[K, V]) putIfAbsent(key K, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	m.entries[key] = expiringEntry[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (m *expiringMap[K, V]) delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Size counts stored entries, expired ones included until the next sweep
func (m *expiringMap[K, V]) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (m *expiringMap[K, V]) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
	return nil
}

func (m *expiringMap[K, V]) sweep(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *expiringMap[K, V]) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}
