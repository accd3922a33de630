package oidc

import "encoding/json"

type Audience []string

func (a *Audience) UnmarshalJSON(text []byte) error {
	var i any
	if err := json.Unmarshal(text, &i); err != nil {
		return err
	}
	switch aud := i.(type) {
	case []any:
		*a = make([]string, len(aud))
		for i, audience := range aud {
			(*a)[i], _ = audience.(string)
		}
	case string:
		*a = []string{aud}
	}
	return nil
}

// EndSessionRequest for the RP-Initiated Logout according to:
// https://openid.net/specs/openid-connect-rpinitiated-1_0.html#RPLogout
type EndSessionRequest struct {
	IdTokenHint           string  `schema:"id_token_hint"`
	LogoutHint            string  `schema:"logout_hint"`
	ClientID              string  `schema:"client_id"`
	PostLogoutRedirectURI string  `schema:"post_logout_redirect_uri"`
	State                 string  `schema:"state"`
	UILocales             Locales `schema:"ui_locales"`
}

// IDTokenHintClaims are the claims of an id_token_hint relevant to
// end session validation. Signature verification of the hint is up
// to the configured IDTokenHintVerifier; an already invalidated
// (expired) hint may still be used to identify the session parties.
type IDTokenHintClaims struct {
	Issuer          string   `json:"iss,omitempty"`
	Subject         string   `json:"sub,omitempty"`
	Audience        Audience `json:"aud,omitempty"`
	Expiration      int64    `json:"exp,omitempty"`
	AuthorizedParty string   `json:"azp,omitempty"`
	SessionID       string   `json:"sid,omitempty"`
}

func (c *IDTokenHintClaims) GetSubject() string {
	return c.Subject
}

func (c *IDTokenHintClaims) GetAuthorizedParty() string {
	return c.AuthorizedParty
}
