package op

import (
	"context"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

type ApplicationType int

const (
	ApplicationTypeWeb ApplicationType = iota
	ApplicationTypeUserAgent
	ApplicationTypeNative
)

// Client represents the metadata of a registered relying party, as
// far as the code issuing flows and single logout need it.
type Client interface {
	GetID() string
	RedirectURIs() []string
	PostLogoutRedirectURIs() []string
	ApplicationType() ApplicationType
	ResponseTypes() []oidc.ResponseType

	// RequirePKCE forces a code_challenge on every code request of
	// this client, regardless of the global enforcement setting.
	RequirePKCE() bool

	// FrontChannelLogoutURI is the endpoint loaded in a hidden iframe
	// during the end session callback. Clients without one do not
	// take part in front channel logout.
	FrontChannelLogoutURI() string

	// FrontChannelLogoutSessionRequired requests sid and iss
	// parameters on the front channel logout call.
	FrontChannelLogoutSessionRequired() bool
}

type ClientProvider interface {
	GetClientByClientID(ctx context.Context, clientID string) (Client, error)
}

// ContainsResponseType reports whether client is registered for the
// given response type.
func ContainsResponseType(client Client, responseType oidc.ResponseType) bool {
	for _, t := range client.ResponseTypes() {
		if t == responseType {
			return true
		}
	}
	return false
}
