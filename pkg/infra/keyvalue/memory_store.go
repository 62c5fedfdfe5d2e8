package keyvalue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// memoryEntry is a stored value with its expiry. A zero ExpiresAt means the
// entry never expires (an Incr before its Expire call is in this state).
type memoryEntry struct {
	Value     string
	ExpiresAt time.Time
}

// MemoryStore is the process-local fallback backend. Data does not survive a
// restart and is not shared across replicas; callers must treat it as
// intentionally non-durable. Expired entries are removed lazily by Sweep,
// which runs before reads rather than on a timer, so a write-only workload
// holds on to dead entries until the next read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithTimeProvider overrides the clock, used by tests to cross TTL
// boundaries without sleeping.
func WithTimeProvider(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.Sweep()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		return "", ErrKeyNotFound
	}
	return entry.Value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memoryEntry{Value: value, ExpiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.Sweep()

	prefix := strings.TrimSuffix(pattern, "*")

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key, entry := range s.entries {
		if s.expired(entry) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Incr follows the durable store's counter semantics: a missing or expired
// key starts at 1 with no expiry until Expire is called; an existing counter
// keeps its expiry.
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		s.entries[key] = &memoryEntry{Value: "1"}
		return 1, nil
	}

	count, err := strconv.ParseInt(entry.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("keyvalue: value at %q is not an integer: %w", key, err)
	}
	count++
	entry.Value = strconv.FormatInt(count, 10)
	return count, nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.ExpiresAt = s.now().Add(ttl)
	}
	return nil
}

// DeleteByPrefix removes every live entry whose key starts with prefix.
func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Sweep removes all entries whose expiry has passed.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return !entry.ExpiresAt.IsZero() && !s.now().Before(entry.ExpiresAt)
}
