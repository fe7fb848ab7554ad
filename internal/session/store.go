package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Store persists the browser-session -> credential-token mapping. This is the
// console's only persisted client state: one token string per session key.
// Durable backends (redis, mysql, postgres) keep tokens across restarts.
type Store interface {
	// Get returns the stored token for a session id, or "" when absent or
	// expired
	Get(sessionID string) (string, error)
	// Put stores a token with the given lifetime
	Put(sessionID, token string, ttl time.Duration) error
	// Delete removes a session's token. Deleting an absent session is not an
	// error.
	Delete(sessionID string) error
	// DeleteExpired purges expired entries and returns how many were removed
	DeleteExpired() (int, error)
	Close() error
}

// NewSessionID returns a fresh random session identifier
func NewSessionID() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is the default in-process backend. Tokens do not survive a
// restart; use a durable backend for that.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return "", nil
	}
	return entry.token, nil
}

func (s *MemoryStore) Put(sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) DeleteExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }
