package op

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/zitadel/schema"

	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
)

const (
	healthEndpoint                    = "/healthz"
	defaultEndSessionEndpoint         = "connect/endsession"
	defaultEndSessionCallbackEndpoint = "connect/endsession/callback"

	// DefaultLogoutIDParam is the query parameter carrying the logout
	// message id into the callback.
	DefaultLogoutIDParam = "logoutId"
)

var defaultCORSOptions = cors.Options{
	AllowCredentials: true,
	AllowedHeaders: []string{
		"Origin",
		"Accept",
		"Accept-Language",
		"Authorization",
		"Content-Type",
		"X-Requested-With",
	},
	AllowedMethods: []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
	},
	ExposedHeaders: []string{
		"Location",
		"Content-Length",
	},
	AllowOriginFunc: func(_ string) bool {
		return true
	},
}

// Provider is the session termination and grant lifecycle core of the
// identity provider. It serves the end session routes and exposes the
// grant service and authorize validation to the token issuing flows.
type Provider struct {
	http.Handler

	issuer         string
	clients        ClientProvider
	logoutMessages LogoutMessageStore
	grants         *PersistedGrantService
	sessionState   *SessionState
	validator      *AuthRequestValidator
	verifier       IDTokenHintVerifier
	decoder        httphelper.Decoder
	logger         *slog.Logger

	logoutIDParam            string
	defaultLogoutRedirectURI string
	currentSubject           func(r *http.Request) string

	endSession         Endpoint
	endSessionCallback Endpoint
	issuerFromRequest  IssuerFromRequest
	middleware         []func(http.Handler) http.Handler
}

type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func WithLogoutIDParam(param string) Option {
	return func(p *Provider) {
		p.logoutIDParam = param
	}
}

func WithDefaultLogoutRedirectURI(uri string) Option {
	return func(p *Provider) {
		p.defaultLogoutRedirectURI = uri
	}
}

// WithSubjectResolver sets how the currently authenticated subject is
// resolved from a request. The hosting layer usually derives it from
// its authentication cookie. Without a resolver every request is
// treated as anonymous.
func WithSubjectResolver(resolve func(r *http.Request) string) Option {
	return func(p *Provider) {
		p.currentSubject = resolve
	}
}

func WithIDTokenHintVerifier(verifier IDTokenHintVerifier) Option {
	return func(p *Provider) {
		p.verifier = verifier
	}
}

// WithEnforcePKCE requires a code challenge on every code request,
// regardless of per client policy.
func WithEnforcePKCE() Option {
	return func(p *Provider) {
		p.validator.EnforcePKCE = true
	}
}

func WithEndSessionEndpoints(endSession, callback Endpoint) Option {
	return func(p *Provider) {
		p.endSession = endSession
		p.endSessionCallback = callback
	}
}

// WithIssuerFromRequest resolves the issuer per request, e.g. from
// Forwarded headers when running behind a reverse proxy.
func WithIssuerFromRequest(issuerFromRequest IssuerFromRequest) Option {
	return func(p *Provider) {
		p.issuerFromRequest = issuerFromRequest
	}
}

func WithHTTPMiddleware(m ...func(http.Handler) http.Handler) Option {
	return func(p *Provider) {
		p.middleware = m
	}
}

func NewProvider(issuer string, clients ClientProvider, logoutMessages LogoutMessageStore, grants *PersistedGrantService, sessionState *SessionState, opts ...Option) (*Provider, error) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	p := &Provider{
		issuer:             issuer,
		clients:            clients,
		logoutMessages:     logoutMessages,
		grants:             grants,
		sessionState:       sessionState,
		validator:          NewAuthRequestValidator(clients),
		decoder:            decoder,
		logger:             slog.Default(),
		logoutIDParam:      DefaultLogoutIDParam,
		currentSubject:     func(*http.Request) string { return "" },
		endSession:         NewEndpoint(defaultEndSessionEndpoint),
		endSessionCallback: NewEndpoint(defaultEndSessionCallbackEndpoint),
	}
	p.issuerFromRequest = StaticIssuer(issuer)
	for _, opt := range opts {
		opt(p)
	}
	p.verifierDefault()
	if err := p.endSession.Validate(); err != nil {
		return nil, err
	}
	if err := p.endSessionCallback.Validate(); err != nil {
		return nil, err
	}
	p.Handler = CreateRouter(p)
	return p, nil
}

func (p *Provider) verifierDefault() {
	if p.verifier == nil {
		p.verifier = NewIDTokenHintVerifier(p.issuer)
	}
}

func (p *Provider) Issuer() string { return p.issuer }
func (p *Provider) ClientProvider() ClientProvider { return p.clients }
func (p *Provider) LogoutMessageStore() LogoutMessageStore { return p.logoutMessages }
func (p *Provider) Grants() *PersistedGrantService { return p.grants }
func (p *Provider) SessionState() *SessionState { return p.sessionState }
func (p *Provider) Validator() *AuthRequestValidator { return p.validator }
func (p *Provider) IDTokenHintVerifier() IDTokenHintVerifier { return p.verifier }
func (p *Provider) Decoder() httphelper.Decoder { return p.decoder }
func (p *Provider) Logger() *slog.Logger { return p.logger }
func (p *Provider) LogoutIDParam() string { return p.logoutIDParam }
func (p *Provider) DefaultLogoutRedirectURI() string { return p.defaultLogoutRedirectURI }
func (p *Provider) EndSessionEndpoint() Endpoint { return p.endSession }
func (p *Provider) EndSessionCallbackEndpoint() Endpoint { return p.endSessionCallback }

func (p *Provider) CurrentSubject(r *http.Request) string {
	return p.currentSubject(r)
}

// CreateRouter mounts the end session routes. Anything else under
// this core answers 404.
func CreateRouter(p *Provider) http.Handler {
	router := chi.NewRouter()
	router.Use(cors.New(defaultCORSOptions).Handler)
	router.Use(NewIssuerInterceptor(p.issuerFromRequest).Handler)
	router.Use(p.middleware...)
	router.HandleFunc(healthEndpoint, healthHandler)
	router.HandleFunc(p.endSession.Relative(), endSessionHandler(p))
	router.HandleFunc(p.endSessionCallback.Relative(), endSessionCallbackHandler(p))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, ErrRouteNotFound, p.logger)
	})
	return router
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	httphelper.MarshalJSON(w, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}
