package oidc

import (
	"crypto/sha256"

	"github.com/kumarnvm/IdentityServer4/pkg/crypto"
)

const (
	CodeChallengeMethodPlain CodeChallengeMethod = "plain"
	CodeChallengeMethodS256  CodeChallengeMethod = "S256"
)

// Input length restrictions for the code_challenge parameter,
// matching the verifier bounds of RFC 7636 section 4.1.
const (
	MinCodeChallengeLength = 43
	MaxCodeChallengeLength = 128
)

type CodeChallengeMethod string

func (m CodeChallengeMethod) IsSupported() bool {
	return m == CodeChallengeMethodPlain || m == CodeChallengeMethodS256
}

type CodeChallenge struct {
	Challenge string
	Method    CodeChallengeMethod
}

func NewSHACodeChallenge(code string) string {
	return crypto.HashString(sha256.New(), code, false)
}

func VerifyCodeChallenge(c *CodeChallenge, codeVerifier string) bool {
	if c == nil {
		return false
	}
	if c.Method == CodeChallengeMethodS256 {
		codeVerifier = NewSHACodeChallenge(codeVerifier)
	}
	return codeVerifier == c.Challenge
}
