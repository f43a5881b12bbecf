package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/evently/core"
)

const DefaultMaxSize = 10000

var _ core.RecoveryStoreWithStats = (*MemoryStore)(nil)

// MemoryStore is an in-process RecoveryStore. Entries expire lazily on Get.
type MemoryStore struct {
	entries map[string]core.RecoveryEntry
	mu      sync.RWMutex
	maxSize int
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

// NewMemoryStore creates a new in-memory recovery store
func NewMemoryStore(c core.StoreConfig) *MemoryStore {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}

	return &MemoryStore{
		entries: make(map[string]core.RecoveryEntry),
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// Put replaces any outstanding entry for email
func (s *MemoryStore) Put(_ context.Context, email string, entry *core.RecoveryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[email]; !exists && len(s.entries) >= s.maxSize {
		s.evictLocked()
	}

	s.entries[email] = *entry
	atomic.AddInt64(&s.sets, 1)
	return nil
}

// evictLocked drops expired entries, or the oldest entry if none expired
func (s *MemoryStore) evictLocked() {
	now := s.now()
	evicted := false
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
			atomic.AddInt64(&s.evictions, 1)
			evicted = true
		}
	}
	if evicted {
		return
	}

	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.CreatedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.CreatedAt, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
		atomic.AddInt64(&s.evictions, 1)
	}
}

// Get returns a copy of the entry for email
func (s *MemoryStore) Get(_ context.Context, email string) (*core.RecoveryEntry, error) {
	s.mu.RLock()
	entry, exists := s.entries[email]
	s.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&s.misses, 1)
		return nil, core.ErrEntryNotFound
	}

	if entry.Expired(s.now()) {
		atomic.AddInt64(&s.misses, 1)
		s.removeIfExpired(email)
		return nil, core.ErrEntryNotFound
	}

	atomic.AddInt64(&s.hits, 1)
	return &entry, nil
}

// removeIfExpired re-checks under the write lock so a concurrent Put is kept
func (s *MemoryStore) removeIfExpired(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[email]; ok && e.Expired(s.now()) {
		delete(s.entries, email)
		atomic.AddInt64(&s.evictions, 1)
	}
}

// Remove deletes the entry for email. Removing an absent entry is not an error.
func (s *MemoryStore) Remove(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, existed := s.entries[email]; existed {
		delete(s.entries, email)
		atomic.AddInt64(&s.deletes, 1)
	}
	return nil
}

// RecordFailedAttempt counts a wrong passcode against the entry for email
func (s *MemoryStore) RecordFailedAttempt(_ context.Context, email, passcode string, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok || entry.Expired(s.now()) || entry.Passcode != passcode {
		return 0, core.ErrEntryNotFound
	}

	entry.Attempts++
	if limit > 0 && entry.Attempts >= limit {
		delete(s.entries, email)
		atomic.AddInt64(&s.deletes, 1)
		return entry.Attempts, nil
	}

	s.entries[email] = entry
	atomic.AddInt64(&s.sets, 1)
	return entry.Attempts, nil
}

// Len returns the number of stored entries, expired or not
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns store statistics
func (s *MemoryStore) Stats() core.StoreStats {
	return core.StoreStats{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		Sets:      atomic.LoadInt64(&s.sets),
		Deletes:   atomic.LoadInt64(&s.deletes),
		Evictions: atomic.LoadInt64(&s.evictions),
		Size:      s.Len(),
	}
}
