package storage

import (
	"context"
	"sync"
	"time"

	"github.com/kumarnvm/IdentityServer4/pkg/op"
)

const defaultLogoutMessageTTL = 5 * time.Minute

// LogoutMessageStore keeps pending logout messages in memory. Entries
// expire after their TTL; reading an expired or unknown id yields
// op.ErrGrantNotFound, deleting one is a no-op.
type LogoutMessageStore struct {
	mu      sync.Mutex
	entries map[string]logoutEntry

	ttl time.Duration
	now func() time.Time
}

type logoutEntry struct {
	message *op.LogoutMessage
	expiry  time.Time
}

func NewLogoutMessageStore() *LogoutMessageStore {
	return &LogoutMessageStore{
		entries: make(map[string]logoutEntry),
		ttl:     defaultLogoutMessageTTL,
		now:     time.Now,
	}
}

func (s *LogoutMessageStore) Write(ctx context.Context, id string, message *op.LogoutMessage) error {
	_, span := tracer.Start(ctx, "LogoutMessageStore.Write")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = logoutEntry{
		message: message,
		expiry:  s.now().Add(s.ttl),
	}
	return nil
}

func (s *LogoutMessageStore) Read(ctx context.Context, id string) (*op.LogoutMessage, error) {
	_, span := tracer.Start(ctx, "LogoutMessageStore.Read")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || !s.now().Before(entry.expiry) {
		delete(s.entries, id)
		return nil, op.ErrGrantNotFound
	}
	return entry.message, nil
}

// Delete drops the message; once deleted it cannot be read again.
// Deleting an unknown id succeeds.
func (s *LogoutMessageStore) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "LogoutMessageStore.Delete")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
