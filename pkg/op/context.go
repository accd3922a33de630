package op

import (
	"context"
	"net/http"

	"github.com/muhlemmer/httpforwarded"
)

type key int

const (
	issuerKey key = 0
)

type IssuerFromRequest func(r *http.Request) string

// StaticIssuer ignores the request and always returns the configured issuer.
func StaticIssuer(issuer string) IssuerFromRequest {
	return func(*http.Request) string {
		return issuer
	}
}

// IssuerFromForwardedOrHost resolves the issuer from the Forwarded
// header (proto and host directives) when the provider runs behind a
// reverse proxy, falling back to the request host.
func IssuerFromForwardedOrHost(path string) IssuerFromRequest {
	return func(r *http.Request) string {
		fwd, err := httpforwarded.ParseFromRequest(r)
		if err == nil && len(fwd["host"]) > 0 {
			proto := "https"
			if p := fwd["proto"]; len(p) > 0 {
				proto = p[0]
			}
			return proto + "://" + fwd["host"][0] + path
		}
		return issuerFromHost(r, path)
	}
}

func issuerFromHost(r *http.Request, path string) string {
	proto := "https"
	if r.TLS == nil {
		proto = "http"
	}
	return proto + "://" + r.Host + path
}

type IssuerInterceptor struct {
	issuerFromRequest IssuerFromRequest
}

// NewIssuerInterceptor will set the issuer into the context
// by the provided IssuerFromRequest.
func NewIssuerInterceptor(issuerFromRequest IssuerFromRequest) *IssuerInterceptor {
	return &IssuerInterceptor{
		issuerFromRequest: issuerFromRequest,
	}
}

func (i *IssuerInterceptor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(ContextWithIssuer(r.Context(), i.issuerFromRequest(r)))
		next.ServeHTTP(w, r)
	})
}

// IssuerFromContext reads the issuer from the context (set by an
// IssuerInterceptor). It will return an empty string if not found.
func IssuerFromContext(ctx context.Context) string {
	ctxIssuer, _ := ctx.Value(issuerKey).(string)
	return ctxIssuer
}

// ContextWithIssuer returns a new context with issuer set to it.
func ContextWithIssuer(ctx context.Context, issuer string) context.Context {
	return context.WithValue(ctx, issuerKey, issuer)
}
