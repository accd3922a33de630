// Package storage provides in-memory implementations of the provider
// storage contracts. Typically these would be a layer on top of your
// database; they double as the reference semantics and the test
// backend.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/kumarnvm/IdentityServer4/internal/otel"
	"github.com/kumarnvm/IdentityServer4/pkg/op"
)

var tracer = otel.Tracer("github.com/kumarnvm/IdentityServer4/storage")

// GrantStore is an in-memory op.RevocableGrantStore. Operations on a
// single key are atomic under the mutex; there are no cross key
// transactions, matching the store contract.
type GrantStore[T op.Grant] struct {
	kind op.GrantKind

	mu      sync.Mutex
	entries map[string]T

	now func() time.Time
}

func NewGrantStore[T op.Grant](kind op.GrantKind) *GrantStore[T] {
	return &GrantStore[T]{
		kind:    kind,
		entries: make(map[string]T),
		now:     time.Now,
	}
}

// spanName qualifies the operation with the grant kind, so the three
// stores stay distinguishable in traces.
func (s *GrantStore[T]) spanName(operation string) string {
	return "GrantStore(" + string(s.kind) + ")." + operation
}

// Store upserts; an existing entry under the same key is overwritten
// without error.
func (s *GrantStore[T]) Store(ctx context.Context, key string, value T) error {
	_, span := tracer.Start(ctx, s.spanName("Store"))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *GrantStore[T]) Get(ctx context.Context, key string) (T, error) {
	_, span := tracer.Start(ctx, s.spanName("Get"))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, op.ErrGrantNotFound
	}
	if value.Expired(s.now()) {
		delete(s.entries, key)
		var zero T
		return zero, op.ErrGrantNotFound
	}
	return value, nil
}

// Remove is idempotent; removing an absent key succeeds silently.
func (s *GrantStore[T]) Remove(ctx context.Context, key string) error {
	_, span := tracer.Start(ctx, s.spanName("Remove"))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// RemoveAll removes every grant bound to both subjectID and clientID.
// No matches is success.
func (s *GrantStore[T]) RemoveAll(ctx context.Context, subjectID, clientID string) error {
	_, span := tracer.Start(ctx, s.spanName("RemoveAll"))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range s.entries {
		if value.GetSubjectID() == subjectID && value.GetClientID() == clientID {
			delete(s.entries, key)
		}
	}
	return nil
}

// NewPersistedGrantService wires the three grant kinds onto fresh
// in-memory stores.
func NewPersistedGrantService() *op.PersistedGrantService {
	return &op.PersistedGrantService{
		AuthorizationCodes: NewGrantStore[*op.AuthorizationCode](op.GrantKindAuthorizationCode),
		RefreshTokens:      NewGrantStore[*op.RefreshToken](op.GrantKindRefreshToken),
		ReferenceTokens:    NewGrantStore[*op.ReferenceToken](op.GrantKindReferenceToken),
	}
}
