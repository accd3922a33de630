package op

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

func signTestIDToken(t *testing.T, claims oidc.IDTokenHintClaims) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.HS256,
		Key:       []byte(strings.Repeat("s", 32)),
	}, nil)
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	jws, err := signer.Sign(payload)
	require.NoError(t, err)
	token, err := jws.CompactSerialize()
	require.NoError(t, err)
	return token
}

func TestIDTokenHintVerifier(t *testing.T) {
	verifier := NewIDTokenHintVerifier("https://idp")

	t.Run("valid hint", func(t *testing.T) {
		hint := signTestIDToken(t, oidc.IDTokenHintClaims{
			Issuer:          "https://idp",
			Subject:         "bob",
			Audience:        oidc.Audience{"app1"},
			AuthorizedParty: "app1",
			SessionID:       "sess-1",
		})
		claims, err := verifier.VerifyIDTokenHint(context.Background(), hint)
		require.NoError(t, err)
		assert.Equal(t, "bob", claims.GetSubject())
		assert.Equal(t, "app1", claims.GetAuthorizedParty())
		assert.Equal(t, "sess-1", claims.SessionID)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		hint := signTestIDToken(t, oidc.IDTokenHintClaims{Issuer: "https://other"})
		_, err := verifier.VerifyIDTokenHint(context.Background(), hint)
		assert.ErrorIs(t, err, ErrHintWrongIssuer)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := verifier.VerifyIDTokenHint(context.Background(), "garbage")
		assert.ErrorIs(t, err, ErrHintMalformed)
	})
}

func TestAudience_UnmarshalJSON(t *testing.T) {
	t.Run("single string", func(t *testing.T) {
		var a oidc.Audience
		require.NoError(t, json.Unmarshal([]byte(`"app1"`), &a))
		assert.Equal(t, oidc.Audience{"app1"}, a)
	})
	t.Run("array", func(t *testing.T) {
		var a oidc.Audience
		require.NoError(t, json.Unmarshal([]byte(`["app1","app2"]`), &a))
		assert.Equal(t, oidc.Audience{"app1", "app2"}, a)
	})
}
