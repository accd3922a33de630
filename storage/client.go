package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/muhlemmer/gu"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
	"github.com/kumarnvm/IdentityServer4/pkg/op"
)

var ErrClientNotFound = errors.New("client not found")

// Client represents the storage model of a registered relying party.
// This could also be your database model.
type Client struct {
	id                                string
	redirectURIs                      []string
	postLogoutRedirectURIs            []string
	applicationType                   op.ApplicationType
	responseTypes                     []oidc.ResponseType
	requirePKCE                       bool
	frontChannelLogoutURI             string
	frontChannelLogoutSessionRequired bool
	disabled                          bool
}

func (c *Client) GetID() string {
	return c.id
}

func (c *Client) RedirectURIs() []string {
	return c.redirectURIs
}

func (c *Client) PostLogoutRedirectURIs() []string {
	return c.postLogoutRedirectURIs
}

func (c *Client) ApplicationType() op.ApplicationType {
	return c.applicationType
}

func (c *Client) ResponseTypes() []oidc.ResponseType {
	return c.responseTypes
}

func (c *Client) RequirePKCE() bool {
	return c.requirePKCE
}

func (c *Client) FrontChannelLogoutURI() string {
	return c.frontChannelLogoutURI
}

func (c *Client) FrontChannelLogoutSessionRequired() bool {
	return c.frontChannelLogoutSessionRequired
}

// WebClient creates a confidential web client. The first redirect URI
// doubles as the post logout target in this demo model.
func WebClient(id string, redirectURIs ...string) *Client {
	return &Client{
		id:                     id,
		redirectURIs:           redirectURIs,
		postLogoutRedirectURIs: redirectURIs,
		applicationType:        op.ApplicationTypeWeb,
		responseTypes: []oidc.ResponseType{
			oidc.ResponseTypeCode,
			oidc.ResponseTypeCodeIDToken,
		},
	}
}

// NativeClient creates a public native client; PKCE is implied by the
// application type.
func NativeClient(id string, redirectURIs ...string) *Client {
	return &Client{
		id:              id,
		redirectURIs:    redirectURIs,
		applicationType: op.ApplicationTypeNative,
		responseTypes:   []oidc.ResponseType{oidc.ResponseTypeCode},
		requirePKCE:     true,
	}
}

type ClientOpt func(*Client)

func WithFrontChannelLogout(uri string, sessionRequired bool) ClientOpt {
	return func(c *Client) {
		c.frontChannelLogoutURI = uri
		c.frontChannelLogoutSessionRequired = sessionRequired
	}
}

func WithPostLogoutRedirectURIs(uris ...string) ClientOpt {
	return func(c *Client) {
		c.postLogoutRedirectURIs = uris
	}
}

func WithRequirePKCE() ClientOpt {
	return func(c *Client) {
		c.requirePKCE = true
	}
}

func Disabled() ClientOpt {
	return func(c *Client) {
		c.disabled = true
	}
}

func (c *Client) With(opts ...ClientOpt) *Client {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientRegistry is an in-memory op.ClientProvider.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewClientRegistry(clients map[string]*Client) *ClientRegistry {
	r := &ClientRegistry{
		clients: make(map[string]*Client, len(clients)),
	}
	gu.MapMerge(clients, r.clients)
	return r
}

func (r *ClientRegistry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.id] = client
}

func (r *ClientRegistry) GetClientByClientID(ctx context.Context, clientID string) (op.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[clientID]
	if !ok || client.disabled {
		return nil, ErrClientNotFound
	}
	return client, nil
}
