package op

import (
	"context"
)

// PersistedGrantService bundles the three grant stores behind the
// per kind operations the protocol flows call. It adds no semantics
// of its own beyond refresh token rotation.
type PersistedGrantService struct {
	AuthorizationCodes GrantStore[*AuthorizationCode]
	RefreshTokens      RevocableGrantStore[*RefreshToken]
	ReferenceTokens    RevocableGrantStore[*ReferenceToken]
}

func (s *PersistedGrantService) StoreAuthorizationCode(ctx context.Context, code string, value *AuthorizationCode) error {
	return s.AuthorizationCodes.Store(ctx, code, value)
}

func (s *PersistedGrantService) GetAuthorizationCode(ctx context.Context, code string) (*AuthorizationCode, error) {
	return s.AuthorizationCodes.Get(ctx, code)
}

// RemoveAuthorizationCode must be called by the redeeming flow right
// after a successful Get. Codes are single use by contract.
func (s *PersistedGrantService) RemoveAuthorizationCode(ctx context.Context, code string) error {
	return s.AuthorizationCodes.Remove(ctx, code)
}

func (s *PersistedGrantService) StoreRefreshToken(ctx context.Context, handle string, value *RefreshToken) error {
	return s.RefreshTokens.Store(ctx, handle, value)
}

func (s *PersistedGrantService) GetRefreshToken(ctx context.Context, handle string) (*RefreshToken, error) {
	return s.RefreshTokens.Get(ctx, handle)
}

func (s *PersistedGrantService) RemoveRefreshToken(ctx context.Context, handle string) error {
	return s.RefreshTokens.Remove(ctx, handle)
}

func (s *PersistedGrantService) RemoveRefreshTokens(ctx context.Context, subjectID, clientID string) error {
	return s.RefreshTokens.RemoveAll(ctx, subjectID, clientID)
}

// RotateRefreshToken invalidates the old handle and stores the new
// one. The two store calls are not atomic as a pair: a redemption
// retry racing the rotation can hit the window where neither handle
// resolves. Callers needing stronger guarantees must serialize
// redemption per handle.
func (s *PersistedGrantService) RotateRefreshToken(ctx context.Context, oldHandle, newHandle string, value *RefreshToken) error {
	if err := s.RefreshTokens.Remove(ctx, oldHandle); err != nil {
		return err
	}
	return s.RefreshTokens.Store(ctx, newHandle, value)
}

func (s *PersistedGrantService) StoreReferenceToken(ctx context.Context, handle string, value *ReferenceToken) error {
	return s.ReferenceTokens.Store(ctx, handle, value)
}

func (s *PersistedGrantService) GetReferenceToken(ctx context.Context, handle string) (*ReferenceToken, error) {
	return s.ReferenceTokens.Get(ctx, handle)
}

func (s *PersistedGrantService) RemoveReferenceToken(ctx context.Context, handle string) error {
	return s.ReferenceTokens.Remove(ctx, handle)
}

func (s *PersistedGrantService) RemoveReferenceTokens(ctx context.Context, subjectID, clientID string) error {
	return s.ReferenceTokens.RemoveAll(ctx, subjectID, clientID)
}
