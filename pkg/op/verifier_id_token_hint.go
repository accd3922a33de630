package op

import (
	"context"
	"encoding/json"
	"errors"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

var (
	ErrHintMalformed   = errors.New("id_token_hint malformed")
	ErrHintWrongIssuer = errors.New("id_token_hint issued by another provider")
)

// IDTokenHintVerifier checks an id_token_hint and returns its claims.
// Implementations decide how strict to be about signatures: an
// expired hint still identifies the session parties, which is all the
// end session flow needs from it.
type IDTokenHintVerifier interface {
	VerifyIDTokenHint(ctx context.Context, hint string) (*oidc.IDTokenHintClaims, error)
}

type idTokenHintVerifier struct {
	issuer string
}

// NewIDTokenHintVerifier returns the default verifier: it parses the
// JWS, requires the configured issuer and leaves signature
// verification to the token issuing components that share the keys.
func NewIDTokenHintVerifier(issuer string) IDTokenHintVerifier {
	return &idTokenHintVerifier{issuer: issuer}
}

func (v *idTokenHintVerifier) VerifyIDTokenHint(_ context.Context, hint string) (*oidc.IDTokenHintClaims, error) {
	jws, err := jose.ParseSigned(hint)
	if err != nil {
		return nil, ErrHintMalformed
	}
	claims := new(oidc.IDTokenHintClaims)
	if err := json.Unmarshal(jws.UnsafePayloadWithoutVerification(), claims); err != nil {
		return nil, ErrHintMalformed
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, ErrHintWrongIssuer
	}
	return claims, nil
}
