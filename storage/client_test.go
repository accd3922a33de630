package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarnvm/IdentityServer4/pkg/op"
)

func TestClientRegistry(t *testing.T) {
	ctx := context.Background()
	registry := NewClientRegistry(map[string]*Client{
		"web": WebClient("web", "https://web.example.com/callback").With(
			WithFrontChannelLogout("https://web.example.com/logout", true),
		),
		"gone": WebClient("gone", "https://gone.example.com/callback").With(Disabled()),
	})
	registry.Register(NativeClient("native", "http://127.0.0.1/callback"))

	t.Run("web client", func(t *testing.T) {
		client, err := registry.GetClientByClientID(ctx, "web")
		require.NoError(t, err)
		assert.Equal(t, "web", client.GetID())
		assert.Equal(t, op.ApplicationTypeWeb, client.ApplicationType())
		assert.Equal(t, "https://web.example.com/logout", client.FrontChannelLogoutURI())
		assert.True(t, client.FrontChannelLogoutSessionRequired())
		assert.False(t, client.RequirePKCE())
		assert.Equal(t, []string{"https://web.example.com/callback"}, client.PostLogoutRedirectURIs())
	})

	t.Run("native client requires PKCE", func(t *testing.T) {
		client, err := registry.GetClientByClientID(ctx, "native")
		require.NoError(t, err)
		assert.Equal(t, op.ApplicationTypeNative, client.ApplicationType())
		assert.True(t, client.RequirePKCE())
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := registry.GetClientByClientID(ctx, "nope")
		assert.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("disabled client", func(t *testing.T) {
		_, err := registry.GetClientByClientID(ctx, "gone")
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}
