package oidc

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	// ResponseTypeCode for the authorization code flow,
	// issuing an authorization code on the front channel.
	ResponseTypeCode ResponseType = "code"

	// ResponseTypeIDToken for the implicit flow, issuing
	// only an id_token and no code.
	ResponseTypeIDToken ResponseType = "id_token token"

	// ResponseTypeIDTokenOnly for the implicit flow,
	// issuing only an id_token.
	ResponseTypeIDTokenOnly ResponseType = "id_token"

	// hybrid flows, issuing a code alongside front channel tokens
	ResponseTypeCodeIDToken      ResponseType = "code id_token"
	ResponseTypeCodeToken        ResponseType = "code token"
	ResponseTypeCodeIDTokenToken ResponseType = "code id_token token"
)

type ResponseType string

// IssuesCode reports whether an authorization request with this
// response type results in an authorization code being issued,
// either alone (code flow) or next to front channel tokens (hybrid).
func (r ResponseType) IssuesCode() bool {
	for _, part := range strings.Fields(string(r)) {
		if part == string(ResponseTypeCode) {
			return true
		}
	}
	return false
}

type Scopes []string

func (s *Scopes) UnmarshalText(text []byte) error {
	*s = strings.Split(string(text), " ")
	return nil
}

type Locales []language.Tag

func (l *Locales) UnmarshalText(text []byte) error {
	locales := strings.Split(string(text), " ")
	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err == nil && !tag.IsRoot() {
			*l = append(*l, tag)
		}
	}
	return nil
}

// AuthRequest is the request sent to the authorization endpoint,
// reduced to the parameters the code issuing flows validate.
type AuthRequest struct {
	Scopes       Scopes       `schema:"scope"`
	ResponseType ResponseType `schema:"response_type"`
	ClientID     string       `schema:"client_id"`
	RedirectURI  string       `schema:"redirect_uri"`
	State        string       `schema:"state"`
	Nonce        string       `schema:"nonce"`

	CodeChallenge       string              `schema:"code_challenge"`
	CodeChallengeMethod CodeChallengeMethod `schema:"code_challenge_method"`
}

func (a *AuthRequest) GetClientID() string {
	return a.ClientID
}

func (a *AuthRequest) GetState() string {
	return a.State
}
