package op

import (
	"context"
	"errors"
	"time"

	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

// ErrGrantNotFound is returned by Get when no grant lives under the
// requested key. Remove of an absent key is not an error.
var ErrGrantNotFound = errors.New("grant not found")

type GrantKind string

const (
	GrantKindAuthorizationCode GrantKind = "authorization_code"
	GrantKindRefreshToken      GrantKind = "refresh_token"
	GrantKindReferenceToken    GrantKind = "reference_token"
)

// Grant is implemented by every persisted grant value. Keys are
// opaque bearer strings handed out to clients; their entropy is a
// security property of whoever issues them, not of the store.
type Grant interface {
	GetSubjectID() string
	GetClientID() string
	Expired(now time.Time) bool
}

// Expiration is the issuance time and lifetime shared by all grants.
type Expiration struct {
	IssuedAt time.Time     `json:"issued_at"`
	Lifetime time.Duration `json:"lifetime"`
}

func (e Expiration) Expired(now time.Time) bool {
	return !now.Before(e.IssuedAt.Add(e.Lifetime))
}

// AuthorizationCode is stored under the issued code. The redeeming
// flow must Remove the code right after a successful Get; the store
// only guarantees that a removed code stays unrecoverable.
type AuthorizationCode struct {
	Expiration
	ClientID      string              `json:"client_id"`
	SubjectID     string              `json:"subject_id"`
	RequestData   *oidc.AuthRequest   `json:"request_data,omitempty"`
	CodeChallenge *oidc.CodeChallenge `json:"code_challenge,omitempty"`
}

func (c *AuthorizationCode) GetSubjectID() string { return c.SubjectID }
func (c *AuthorizationCode) GetClientID() string { return c.ClientID }

// RefreshToken is stored under its handle. Rotation is expressed as
// Remove(old) followed by Store(new); the pair is not atomic, so a
// concurrent redemption retry may observe the window in between.
type RefreshToken struct {
	Expiration
	SubjectID string         `json:"subject_id"`
	ClientID  string         `json:"client_id"`
	Scopes    oidc.Scopes    `json:"scopes,omitempty"`
	Claims    map[string]any `json:"claims,omitempty"`
}

func (t *RefreshToken) GetSubjectID() string { return t.SubjectID }
func (t *RefreshToken) GetClientID() string { return t.ClientID }

// ReferenceToken is an opaque access token handle whose payload is
// resolved server side on introspection.
type ReferenceToken struct {
	Expiration
	SubjectID string         `json:"subject_id"`
	ClientID  string         `json:"client_id"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func (t *ReferenceToken) GetSubjectID() string { return t.SubjectID }
func (t *ReferenceToken) GetClientID() string { return t.ClientID }

// GrantStore is the keyed store contract shared by all grant kinds.
// Operations on a single key are atomic; there are no cross key
// transactions. Store overwrites silently, Remove of an absent key
// succeeds.
type GrantStore[T Grant] interface {
	Store(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
	Remove(ctx context.Context, key string) error
}

// RevocableGrantStore additionally supports bulk removal by subject
// and client, used for consent withdrawal, logout triggered
// revocation and client disablement. No matches is success.
type RevocableGrantStore[T Grant] interface {
	GrantStore[T]
	RemoveAll(ctx context.Context, subjectID, clientID string) error
}

// LogoutMessage is the pending logout context written by the end
// session endpoint and consumed by the logout UI and callback.
type LogoutMessage struct {
	ClientID              string       `json:"client_id,omitempty"`
	PostLogoutRedirectURI string       `json:"post_logout_redirect_uri,omitempty"`
	SubjectID             string       `json:"subject_id,omitempty"`
	SessionID             string       `json:"session_id,omitempty"`
	State                 string       `json:"state,omitempty"`
	UILocales             oidc.Locales `json:"ui_locales,omitempty"`
}

// ContainsPayload reports whether the message carries anything worth
// showing on the logout page: a requesting client or a post logout
// redirect target.
func (m *LogoutMessage) ContainsPayload() bool {
	return m != nil && (m.ClientID != "" || m.PostLogoutRedirectURI != "")
}

// PostLogoutRedirect returns the validated redirect target with the
// relying party's state appended, for the continue link of the logout
// page. It is empty when the request named no redirect target.
func (m *LogoutMessage) PostLogoutRedirect() string {
	if m == nil || m.PostLogoutRedirectURI == "" {
		return ""
	}
	if m.State == "" {
		return m.PostLogoutRedirectURI
	}
	uri, err := httphelper.AddQueryParam(m.PostLogoutRedirectURI, "state", m.State)
	if err != nil {
		return m.PostLogoutRedirectURI
	}
	return uri
}

// LogoutMessageStore keeps pending logout messages under generated,
// unguessable ids. Write is write once, Delete of an unknown id
// succeeds. Entries may expire per store policy.
type LogoutMessageStore interface {
	Write(ctx context.Context, id string, message *LogoutMessage) error
	Read(ctx context.Context, id string) (*LogoutMessage, error)
	Delete(ctx context.Context, id string) error
}
