package op

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/kumarnvm/IdentityServer4/internal/otel"
	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

// SidParam is the query parameter carrying the session id on the
// callback and on front channel logout calls.
const SidParam = "sid"

var tracer = otel.Tracer("github.com/kumarnvm/IdentityServer4/pkg/op")

// SessionEnder provides the collaborators of the end session flow.
type SessionEnder interface {
	Decoder() httphelper.Decoder
	ClientProvider() ClientProvider
	LogoutMessageStore() LogoutMessageStore
	SessionState() *SessionState
	IDTokenHintVerifier() IDTokenHintVerifier
	CurrentSubject(r *http.Request) string
	DefaultLogoutRedirectURI() string
	LogoutIDParam() string
	Logger() *slog.Logger
}

// signoutPhase is the explicit state of one pass through the end
// session protocol. Every terminal error short circuits to
// phaseCompleted.
type signoutPhase int

const (
	phaseIdle signoutPhase = iota
	phaseValidatingSignout
	phaseAwaitingCallback
	phaseProcessingCallback
	phaseCompleted
)

type signoutEvent int

const (
	eventSignoutRequested signoutEvent = iota
	eventSignoutValidated
	eventCallbackRequested
	eventCallbackProcessed
	eventFailed
)

// nextSignoutPhase is the pure transition function of the end session
// state machine.
func nextSignoutPhase(phase signoutPhase, event signoutEvent) signoutPhase {
	if event == eventFailed {
		return phaseCompleted
	}
	switch phase {
	case phaseIdle:
		if event == eventSignoutRequested {
			return phaseValidatingSignout
		}
		if event == eventCallbackRequested {
			return phaseProcessingCallback
		}
	case phaseValidatingSignout:
		if event == eventSignoutValidated {
			return phaseAwaitingCallback
		}
	case phaseAwaitingCallback:
		if event == eventCallbackRequested {
			return phaseProcessingCallback
		}
	case phaseProcessingCallback:
		if event == eventCallbackProcessed {
			return phaseCompleted
		}
	}
	return phaseCompleted
}

// ValidatedEndSessionRequest is the outcome of end session request
// validation: the resolved parties of the session being terminated.
type ValidatedEndSessionRequest struct {
	Client                Client
	SubjectID             string
	SessionID             string
	PostLogoutRedirectURI string
	State                 string
	UILocales             oidc.Locales
}

// SignoutPageResult tells the hosting layer to render the logout
// confirmation page. LogoutID is empty when the request did not
// resolve to a client or post logout redirect target.
type SignoutPageResult struct {
	LogoutID string
}

func endSessionHandler(ender SessionEnder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		EndSession(w, r, ender)
	}
}

func endSessionCallbackHandler(ender SessionEnder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		EndSessionCallback(w, r, ender)
	}
}

// EndSession processes the RP initiated logout request. Malformed or
// unauthorized parameters never hard fail: they degrade to the
// confirmation page without a logout id.
func EndSession(w http.ResponseWriter, r *http.Request, ender SessionEnder) {
	ctx, span := tracer.Start(r.Context(), "EndSession")
	defer span.End()
	r = r.WithContext(ctx)

	phase := nextSignoutPhase(phaseIdle, eventSignoutRequested)

	req, err := ParseEndSessionRequest(r, ender.Decoder())
	if err != nil {
		if errors.Is(err, ErrMethodNotAllowed) {
			nextSignoutPhase(phase, eventFailed)
			WriteError(w, r, err, ender.Logger())
			return
		}
		// malformed parameters degrade like validation failures
		ender.Logger().WarnContext(ctx, "end_session request malformed", "err", err)
		req = new(oidc.EndSessionRequest)
	}

	validated, err := ValidateEndSessionRequest(ctx, req, ender.CurrentSubject(r), ender)
	if err != nil {
		// degrade to the generic confirmation page
		ender.Logger().WarnContext(ctx, "end_session validation failed", "err", err)
		validated = nil
	}
	phase = nextSignoutPhase(phase, eventSignoutValidated)

	result, err := createLogoutPageResult(ctx, validated, ender)
	if err != nil {
		nextSignoutPhase(phase, eventFailed)
		WriteError(w, r, err, ender.Logger())
		return
	}
	writeSignoutPage(w, result)
}

// ParseEndSessionRequest decodes the end session parameters from the
// query string (GET) or form body (POST). Any other method is
// rejected.
func ParseEndSessionRequest(r *http.Request, decoder httphelper.Decoder) (*oidc.EndSessionRequest, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		return nil, ErrMethodNotAllowed
	}
	if err := r.ParseForm(); err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("error parsing form").WithParent(err)
	}
	req := new(oidc.EndSessionRequest)
	if err := decoder.Decode(req, r.Form); err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("error decoding form").WithParent(err)
	}
	return req, nil
}

// ValidateEndSessionRequest resolves the parties named by the request.
// The subject may be empty (no authenticated session). The configured
// default logout redirect serves as the target until the request names
// a valid one of its own.
func ValidateEndSessionRequest(ctx context.Context, req *oidc.EndSessionRequest, subject string, ender SessionEnder) (*ValidatedEndSessionRequest, error) {
	validated := &ValidatedEndSessionRequest{
		SubjectID:             subject,
		PostLogoutRedirectURI: ender.DefaultLogoutRedirectURI(),
		State:                 req.State,
		UILocales:             req.UILocales,
	}
	if req.IdTokenHint != "" {
		claims, err := ender.IDTokenHintVerifier().VerifyIDTokenHint(ctx, req.IdTokenHint)
		if err != nil {
			return nil, oidc.ErrInvalidRequest().WithDescription("id_token_hint invalid").WithParent(err)
		}
		validated.SubjectID = claims.GetSubject()
		validated.SessionID = claims.SessionID
		if req.ClientID != "" && req.ClientID != claims.GetAuthorizedParty() {
			return nil, oidc.ErrInvalidRequest().WithDescription("client_id does not match azp of id_token_hint")
		}
		req.ClientID = claims.GetAuthorizedParty()
	}
	if req.ClientID != "" {
		client, err := ender.ClientProvider().GetClientByClientID(ctx, req.ClientID)
		if err != nil {
			return nil, oidc.DefaultToServerError(err, "unable to retrieve client")
		}
		validated.Client = client
		if req.PostLogoutRedirectURI != "" {
			if err := ValidatePostLogoutRedirectURI(req.PostLogoutRedirectURI, client); err != nil {
				return nil, err
			}
			validated.PostLogoutRedirectURI = req.PostLogoutRedirectURI
		}
	}
	return validated, nil
}

func ValidatePostLogoutRedirectURI(postLogoutRedirectURI string, client Client) error {
	for _, uri := range client.PostLogoutRedirectURIs() {
		if uri == postLogoutRedirectURI {
			return nil
		}
	}
	return oidc.ErrInvalidRequest().WithDescription("post_logout_redirect_uri invalid")
}

// createLogoutPageResult persists a logout message when the validated
// request names a client or redirect target, and hands its id to the
// confirmation page.
func createLogoutPageResult(ctx context.Context, validated *ValidatedEndSessionRequest, ender SessionEnder) (*SignoutPageResult, error) {
	if validated == nil || (validated.Client == nil && validated.PostLogoutRedirectURI == "") {
		return &SignoutPageResult{}, nil
	}
	msg := &LogoutMessage{
		PostLogoutRedirectURI: validated.PostLogoutRedirectURI,
		SubjectID:             validated.SubjectID,
		SessionID:             validated.SessionID,
		State:                 validated.State,
		UILocales:             validated.UILocales,
	}
	if validated.Client != nil {
		msg.ClientID = validated.Client.GetID()
	}
	id := uuid.NewString()
	if err := ender.LogoutMessageStore().Write(ctx, id, msg); err != nil {
		return nil, oidc.DefaultToServerError(err, "unable to store logout message")
	}
	return &SignoutPageResult{LogoutID: id}, nil
}

// EndSessionCallback handles the asynchronous logout callback,
// fanning the logout out to every participating client via hidden
// iframes. It is safe to invoke repeatedly: deleting an already
// deleted message and clearing cleared cookies are no-ops.
func EndSessionCallback(w http.ResponseWriter, r *http.Request, ender SessionEnder) {
	ctx, span := tracer.Start(r.Context(), "EndSessionCallback")
	defer span.End()
	r = r.WithContext(ctx)

	phase := nextSignoutPhase(phaseIdle, eventCallbackRequested)

	if r.Method != http.MethodGet {
		nextSignoutPhase(phase, eventFailed)
		WriteError(w, r, ErrMethodNotAllowed, ender.Logger())
		return
	}

	// best effort: the message may already be consumed or expired
	if logoutID := r.URL.Query().Get(ender.LogoutIDParam()); logoutID != "" {
		if err := ender.LogoutMessageStore().Delete(ctx, logoutID); err != nil {
			ender.Logger().WarnContext(ctx, "deleting logout message failed", "logout_id", logoutID, "err", err)
		}
	}

	sid, ok := ValidateSid(ender.SessionState().ReadSessionID(r), r.URL.Query().Get(SidParam))
	if !ok {
		nextSignoutPhase(phase, eventFailed)
		WriteError(w, r, ErrSessionMismatch, ender.Logger())
		return
	}

	urls := ClientLogoutURLs(ctx, sid, ender.SessionState().ReadParticipatingClients(r), ender)

	// cookies are cleared exactly once the URL enumeration succeeded,
	// even when no client takes part in front channel logout
	ender.SessionState().ClearSessionID(w)
	ender.SessionState().ClearParticipatingClients(w)

	nextSignoutPhase(phase, eventCallbackProcessed)
	writeSignoutCallbackPage(w, urls)
}

// ValidateSid compares the sid held by the session cookie with the
// one supplied in the query. The comparison runs in constant time
// relative to the content of the values. It returns the sid only on
// an exact match.
func ValidateSid(cookieSid, querySid string) (string, bool) {
	if cookieSid == "" || querySid == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(cookieSid), []byte(querySid)) == 1 {
		return querySid, true
	}
	return "", false
}

// ClientLogoutURLs resolves the front channel logout URL of every
// participating client. Clients that cannot be resolved or expose no
// logout URI are skipped; the fan out never fails as a whole.
func ClientLogoutURLs(ctx context.Context, sid string, clientIDs []string, ender SessionEnder) []string {
	urls := make([]string, 0, len(clientIDs))
	for _, clientID := range clientIDs {
		client, err := ender.ClientProvider().GetClientByClientID(ctx, clientID)
		if err != nil {
			ender.Logger().WarnContext(ctx, "skipping client in logout fan out", "client_id", clientID, "err", err)
			continue
		}
		logoutURL := client.FrontChannelLogoutURI()
		if logoutURL == "" {
			continue
		}
		if client.FrontChannelLogoutSessionRequired() {
			logoutURL = addQueryString(logoutURL, SidParam, sid)
			logoutURL = addQueryString(logoutURL, "iss", IssuerFromContext(ctx))
		}
		urls = append(urls, logoutURL)
	}
	return urls
}

// addQueryString appends a url encoded key=value pair, keeping the
// order of previously appended parameters.
func addQueryString(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + key + "=" + url.QueryEscape(value)
}
