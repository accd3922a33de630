package op

import (
	"context"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

// AuthRequestValidator validates authorize requests as far as the
// code issuing flows are concerned. It is stateless; the only lookup
// is the client metadata resolution.
type AuthRequestValidator struct {
	clients ClientProvider

	// EnforcePKCE requires a code challenge on every code request,
	// regardless of client policy.
	EnforcePKCE bool
}

func NewAuthRequestValidator(clients ClientProvider) *AuthRequestValidator {
	return &AuthRequestValidator{clients: clients}
}

// Validate checks the authorize request against the resolved client
// policy. It returns nil or an *oidc.Error; it never panics across
// the boundary.
func (v *AuthRequestValidator) Validate(ctx context.Context, authReq *oidc.AuthRequest) error {
	if authReq.ClientID == "" {
		return oidc.ErrInvalidRequest().WithDescription("client_id missing")
	}
	client, err := v.clients.GetClientByClientID(ctx, authReq.ClientID)
	if err != nil {
		return oidc.ErrInvalidClient().WithDescription("unknown client").WithParent(err)
	}
	if err := ValidateAuthReqResponseType(client, authReq.ResponseType); err != nil {
		return err
	}
	if err := ValidateAuthReqRedirectURI(client, authReq.RedirectURI); err != nil {
		return err
	}
	return ValidateAuthReqCodeChallenge(client, authReq, v.EnforcePKCE)
}

func ValidateAuthReqResponseType(client Client, responseType oidc.ResponseType) error {
	if responseType == "" {
		return oidc.ErrInvalidRequest().WithDescription("response_type empty")
	}
	if !ContainsResponseType(client, responseType) {
		return oidc.ErrUnauthorizedClient().WithDescription("response_type %s not allowed for this client", responseType)
	}
	return nil
}

func ValidateAuthReqRedirectURI(client Client, uri string) error {
	if uri == "" {
		return oidc.ErrInvalidRequest().WithDescription("redirect_uri missing")
	}
	for _, registered := range client.RedirectURIs() {
		if registered == uri {
			return nil
		}
	}
	return oidc.ErrInvalidRequest().WithDescription("redirect_uri not registered")
}

// ValidateAuthReqCodeChallenge applies the PKCE rules: flows that
// never issue a code skip challenge validation entirely; flows that
// do require a challenge when PKCE is enforced globally, by client
// policy or by the native application type.
func ValidateAuthReqCodeChallenge(client Client, authReq *oidc.AuthRequest, enforcePKCE bool) error {
	if !authReq.ResponseType.IssuesCode() {
		return nil
	}
	if authReq.CodeChallenge == "" {
		if codeChallengeRequired(client, enforcePKCE) {
			return oidc.ErrInvalidRequest().WithDescription("code challenge required")
		}
		return nil
	}
	if l := len(authReq.CodeChallenge); l < oidc.MinCodeChallengeLength || l > oidc.MaxCodeChallengeLength {
		return oidc.ErrInvalidRequest().WithDescription("code_challenge length must be between %d and %d characters", oidc.MinCodeChallengeLength, oidc.MaxCodeChallengeLength)
	}
	// absent method defaults to plain
	if authReq.CodeChallengeMethod != "" && !authReq.CodeChallengeMethod.IsSupported() {
		return oidc.ErrInvalidRequest().WithDescription("transform algorithm not supported")
	}
	return nil
}

func codeChallengeRequired(client Client, enforcePKCE bool) bool {
	return enforcePKCE ||
		client.RequirePKCE() ||
		client.ApplicationType() == ApplicationTypeNative
}

// CodeChallengeFromAuthRequest builds the challenge to persist with
// the authorization code, applying the plain default.
func CodeChallengeFromAuthRequest(authReq *oidc.AuthRequest) *oidc.CodeChallenge {
	if authReq.CodeChallenge == "" {
		return nil
	}
	method := authReq.CodeChallengeMethod
	if method == "" {
		method = oidc.CodeChallengeMethodPlain
	}
	return &oidc.CodeChallenge{
		Challenge: authReq.CodeChallenge,
		Method:    method,
	}
}
