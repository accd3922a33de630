package op

import (
	"encoding/json"
	"net/http"

	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
)

const (
	DefaultSessionIDCookieName  = "idsrv.session"
	DefaultClientListCookieName = "idsrv.clients"

	// upper bound of tracked clients per session;
	// the oldest entry is dropped beyond it
	maxParticipatingClients = 50
)

// SessionState is the browser held state of an authentication
// session: the session id and the list of clients that signed in
// through it. Both live in signed cookies, never in server memory.
type SessionState struct {
	cookies       *httphelper.CookieHandler
	sessionCookie string
	clientsCookie string
}

type SessionStateOpt func(*SessionState)

func WithSessionCookieName(name string) SessionStateOpt {
	return func(s *SessionState) {
		s.sessionCookie = name
	}
}

func WithClientListCookieName(name string) SessionStateOpt {
	return func(s *SessionState) {
		s.clientsCookie = name
	}
}

func NewSessionState(cookies *httphelper.CookieHandler, opts ...SessionStateOpt) *SessionState {
	s := &SessionState{
		cookies:       cookies,
		sessionCookie: DefaultSessionIDCookieName,
		clientsCookie: DefaultClientListCookieName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadSessionID returns the sid of the current session, or an empty
// string if there is none or the cookie fails its signature check.
func (s *SessionState) ReadSessionID(r *http.Request) string {
	sid, err := s.cookies.CheckCookie(r, s.sessionCookie)
	if err != nil {
		return ""
	}
	return sid
}

func (s *SessionState) SetSessionID(w http.ResponseWriter, sid string) error {
	return s.cookies.SetCookie(w, s.sessionCookie, sid)
}

func (s *SessionState) ClearSessionID(w http.ResponseWriter) {
	s.cookies.DeleteCookie(w, s.sessionCookie)
}

// ReadParticipatingClients returns the ids of the clients that joined
// the current session, in sign in order. A missing or tampered cookie
// reads as an empty list.
func (s *SessionState) ReadParticipatingClients(r *http.Request) []string {
	value, err := s.cookies.CheckCookie(r, s.clientsCookie)
	if err != nil {
		return nil
	}
	var clients []string
	if err := json.Unmarshal([]byte(value), &clients); err != nil {
		return nil
	}
	return clients
}

// AddParticipatingClient records clientID against the session. Adding
// an already recorded client is a no-op.
func (s *SessionState) AddParticipatingClient(w http.ResponseWriter, r *http.Request, clientID string) error {
	clients := s.ReadParticipatingClients(r)
	for _, id := range clients {
		if id == clientID {
			return nil
		}
	}
	clients = append(clients, clientID)
	if len(clients) > maxParticipatingClients {
		clients = clients[len(clients)-maxParticipatingClients:]
	}
	value, err := json.Marshal(clients)
	if err != nil {
		return err
	}
	return s.cookies.SetCookie(w, s.clientsCookie, string(value))
}

func (s *SessionState) ClearParticipatingClients(w http.ResponseWriter) {
	s.cookies.DeleteCookie(w, s.clientsCookie)
}
