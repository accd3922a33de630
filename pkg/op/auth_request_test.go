package op

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

type testClient struct {
	id                    string
	redirectURIs          []string
	postLogoutURIs        []string
	appType               ApplicationType
	responseTypes         []oidc.ResponseType
	requirePKCE           bool
	logoutURI             string
	logoutSessionRequired bool
}

func (c *testClient) GetID() string { return c.id }
func (c *testClient) RedirectURIs() []string { return c.redirectURIs }
func (c *testClient) PostLogoutRedirectURIs() []string { return c.postLogoutURIs }
func (c *testClient) ApplicationType() ApplicationType { return c.appType }
func (c *testClient) ResponseTypes() []oidc.ResponseType { return c.responseTypes }
func (c *testClient) RequirePKCE() bool { return c.requirePKCE }
func (c *testClient) FrontChannelLogoutURI() string { return c.logoutURI }
func (c *testClient) FrontChannelLogoutSessionRequired() bool { return c.logoutSessionRequired }

type testClientProvider map[string]*testClient

func (p testClientProvider) GetClientByClientID(_ context.Context, clientID string) (Client, error) {
	client, ok := p[clientID]
	if !ok {
		return nil, errors.New("client not found")
	}
	return client, nil
}

func newCodeClient(id string, requirePKCE bool) *testClient {
	return &testClient{
		id:            id,
		redirectURIs:  []string{"https://server/cb"},
		appType:       ApplicationTypeWeb,
		responseTypes: []oidc.ResponseType{oidc.ResponseTypeCode, oidc.ResponseTypeCodeIDToken},
		requirePKCE:   requirePKCE,
	}
}

func newImplicitClient(id string) *testClient {
	return &testClient{
		id:            id,
		redirectURIs:  []string{"https://server/cb"},
		appType:       ApplicationTypeUserAgent,
		responseTypes: []oidc.ResponseType{oidc.ResponseTypeIDToken, oidc.ResponseTypeIDTokenOnly},
	}
}

func TestAuthRequestValidator_PKCE(t *testing.T) {
	clients := testClientProvider{
		"codeclient":        newCodeClient("codeclient", false),
		"codeclient.pkce":   newCodeClient("codeclient.pkce", true),
		"implicitclient":    newImplicitClient("implicitclient"),
		"nativeclient": {
			id:            "nativeclient",
			redirectURIs:  []string{"https://server/cb"},
			appType:       ApplicationTypeNative,
			responseTypes: []oidc.ResponseType{oidc.ResponseTypeCode},
		},
	}
	validator := NewAuthRequestValidator(clients)

	validChallenge := strings.Repeat("x", oidc.MinCodeChallengeLength)

	tests := []struct {
		name     string
		req      *oidc.AuthRequest
		wantErr  error
		wantDesc string
	}{
		{
			name: "code request with challenge and plain method allowed",
			req: &oidc.AuthRequest{
				ClientID:            "codeclient.pkce",
				RedirectURI:         "https://server/cb",
				ResponseType:        oidc.ResponseTypeCode,
				CodeChallenge:       validChallenge,
				CodeChallengeMethod: oidc.CodeChallengeMethodPlain,
			},
		},
		{
			name: "code request with challenge and S256 method allowed",
			req: &oidc.AuthRequest{
				ClientID:            "codeclient.pkce",
				RedirectURI:         "https://server/cb",
				ResponseType:        oidc.ResponseTypeCode,
				CodeChallenge:       validChallenge,
				CodeChallengeMethod: oidc.CodeChallengeMethodS256,
			},
		},
		{
			name: "code request with challenge and missing method allowed",
			req: &oidc.AuthRequest{
				ClientID:      "codeclient.pkce",
				RedirectURI:   "https://server/cb",
				ResponseType:  oidc.ResponseTypeCode,
				CodeChallenge: validChallenge,
			},
		},
		{
			name: "max length challenge allowed",
			req: &oidc.AuthRequest{
				ClientID:      "codeclient.pkce",
				RedirectURI:   "https://server/cb",
				ResponseType:  oidc.ResponseTypeCode,
				CodeChallenge: strings.Repeat("x", oidc.MaxCodeChallengeLength),
			},
		},
		{
			name: "code request missing challenge rejected",
			req: &oidc.AuthRequest{
				ClientID:     "codeclient.pkce",
				RedirectURI:  "https://server/cb",
				ResponseType: oidc.ResponseTypeCode,
			},
			wantErr:  oidc.ErrInvalidRequest(),
			wantDesc: "code challenge required",
		},
		{
			name: "hybrid request missing challenge rejected",
			req: &oidc.AuthRequest{
				ClientID:     "codeclient.pkce",
				RedirectURI:  "https://server/cb",
				ResponseType: oidc.ResponseTypeCodeIDToken,
			},
			wantErr:  oidc.ErrInvalidRequest(),
			wantDesc: "code challenge required",
		},
		{
			name: "native client missing challenge rejected",
			req: &oidc.AuthRequest{
				ClientID:     "nativeclient",
				RedirectURI:  "https://server/cb",
				ResponseType: oidc.ResponseTypeCode,
			},
			wantErr:  oidc.ErrInvalidRequest(),
			wantDesc: "code challenge required",
		},
		{
			name: "missing challenge without PKCE policy allowed",
			req: &oidc.AuthRequest{
				ClientID:     "codeclient",
				RedirectURI:  "https://server/cb",
				ResponseType: oidc.ResponseTypeCode,
			},
		},
		{
			name: "invalid method rejected",
			req: &oidc.AuthRequest{
				ClientID:            "codeclient.pkce",
				RedirectURI:         "https://server/cb",
				ResponseType:        oidc.ResponseTypeCode,
				CodeChallenge:       validChallenge,
				CodeChallengeMethod: "invalid",
			},
			wantErr:  oidc.ErrInvalidRequest(),
			wantDesc: "transform algorithm not supported",
		},
		{
			name: "too short challenge rejected",
			req: &oidc.AuthRequest{
				ClientID:      "codeclient.pkce",
				RedirectURI:   "https://server/cb",
				ResponseType:  oidc.ResponseTypeCode,
				CodeChallenge: strings.Repeat("x", oidc.MinCodeChallengeLength-1),
			},
			wantErr: oidc.ErrInvalidRequest(),
		},
		{
			name: "too long challenge rejected",
			req: &oidc.AuthRequest{
				ClientID:      "codeclient.pkce",
				RedirectURI:   "https://server/cb",
				ResponseType:  oidc.ResponseTypeCode,
				CodeChallenge: strings.Repeat("x", oidc.MaxCodeChallengeLength+1),
			},
			wantErr: oidc.ErrInvalidRequest(),
		},
		{
			name: "implicit flow skips challenge validation",
			req: &oidc.AuthRequest{
				ClientID:     "implicitclient",
				RedirectURI:  "https://server/cb",
				ResponseType: oidc.ResponseTypeIDToken,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(context.Background(), tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantDesc != "" {
				oauthErr := new(oidc.Error)
				require.ErrorAs(t, err, &oauthErr)
				assert.Equal(t, tt.wantDesc, oauthErr.Description)
			}
		})
	}
}

func TestAuthRequestValidator_EnforcePKCE(t *testing.T) {
	clients := testClientProvider{"codeclient": newCodeClient("codeclient", false)}
	validator := NewAuthRequestValidator(clients)
	validator.EnforcePKCE = true

	err := validator.Validate(context.Background(), &oidc.AuthRequest{
		ClientID:     "codeclient",
		RedirectURI:  "https://server/cb",
		ResponseType: oidc.ResponseTypeCode,
	})
	require.Error(t, err)
	oauthErr := new(oidc.Error)
	require.ErrorAs(t, err, &oauthErr)
	assert.Equal(t, "code challenge required", oauthErr.Description)
}

func TestAuthRequestValidator_RequestErrors(t *testing.T) {
	clients := testClientProvider{"codeclient": newCodeClient("codeclient", false)}
	validator := NewAuthRequestValidator(clients)

	t.Run("missing client_id", func(t *testing.T) {
		err := validator.Validate(context.Background(), &oidc.AuthRequest{})
		assert.ErrorIs(t, err, oidc.ErrInvalidRequest())
	})
	t.Run("unknown client", func(t *testing.T) {
		err := validator.Validate(context.Background(), &oidc.AuthRequest{ClientID: "ghost"})
		assert.ErrorIs(t, err, oidc.ErrInvalidClient())
	})
	t.Run("response type not registered", func(t *testing.T) {
		err := validator.Validate(context.Background(), &oidc.AuthRequest{
			ClientID:     "codeclient",
			RedirectURI:  "https://server/cb",
			ResponseType: oidc.ResponseTypeIDToken,
		})
		assert.ErrorIs(t, err, oidc.ErrUnauthorizedClient())
	})
	t.Run("redirect uri not registered", func(t *testing.T) {
		err := validator.Validate(context.Background(), &oidc.AuthRequest{
			ClientID:     "codeclient",
			RedirectURI:  "https://evil/cb",
			ResponseType: oidc.ResponseTypeCode,
		})
		assert.ErrorIs(t, err, oidc.ErrInvalidRequest())
	})
}

func TestCodeChallengeFromAuthRequest(t *testing.T) {
	challenge := strings.Repeat("x", oidc.MinCodeChallengeLength)
	t.Run("no challenge", func(t *testing.T) {
		assert.Nil(t, CodeChallengeFromAuthRequest(&oidc.AuthRequest{}))
	})
	t.Run("defaults to plain", func(t *testing.T) {
		got := CodeChallengeFromAuthRequest(&oidc.AuthRequest{CodeChallenge: challenge})
		assert.Equal(t, &oidc.CodeChallenge{Challenge: challenge, Method: oidc.CodeChallengeMethodPlain}, got)
	})
	t.Run("keeps method", func(t *testing.T) {
		got := CodeChallengeFromAuthRequest(&oidc.AuthRequest{
			CodeChallenge:       challenge,
			CodeChallengeMethod: oidc.CodeChallengeMethodS256,
		})
		assert.Equal(t, oidc.CodeChallengeMethodS256, got.Method)
	})
}
