package session

import (
	"context"
	"sync"
	"time"
)

// Store is a raw key/value store scoped by session id.
type Store interface {
	Get(ctx context.Context, sid, key string) ([]byte, error)
	Set(ctx context.Context, sid, key string, value []byte) error
	// Take returns the value and removes it.
	Take(ctx context.Context, sid, key string) ([]byte, error)
	Delete(ctx context.Context, sid string, keys ...string) error
	// Touch restarts the expiry of the given records. Missing keys are ignored.
	Touch(ctx context.Context, sid string, keys ...string) error
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 keeps records until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(recordKey(sid, key))
}

func (s *MemoryStore) Set(_ context.Context, sid, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.data[recordKey(sid, key)] = entry
	return nil
}

func (s *MemoryStore) Take(_ context.Context, sid, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey(sid, key)
	value, err := s.getLocked(k)
	if err != nil {
		return nil, err
	}
	delete(s.data, k)
	return value, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, recordKey(sid, key))
	}
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, sid string, keys ...string) error {
	if s.ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		k := recordKey(sid, key)
		if _, err := s.getLocked(k); err != nil {
			continue
		}
		entry := s.data[k]
		entry.expiresAt = s.now().Add(s.ttl)
		s.data[k] = entry
	}
	return nil
}

func (s *MemoryStore) getLocked(k string) ([]byte, error) {
	entry, ok := s.data[k]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.data, k)
		return nil, ErrNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

func recordKey(sid, key string) string {
	return "portal:session:" + sid + ":" + key
}
