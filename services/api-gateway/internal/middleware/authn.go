package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
)

const (
	MessageAuthenticationRequired = "Authentication required"
	MessageAuthenticationFailed   = "Authentication failed"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// State is the position of a request in the authentication state machine.
// Unauthenticated moves to Verifying or Rejected; Verifying moves to Authenticated or Rejected.
type State int

const (
	StateUnauthenticated State = iota
	StateVerifying
	StateAuthenticated
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating one request.
type Decision struct {
	State State
	// Bypass is set for allowlisted paths and OPTIONS requests, which pass without a credential.
	Bypass   bool
	Identity auth.Identity
	// Message is the client-facing reason when State is StateRejected.
	Message string
	// Err is the internal cause of a rejection. It is logged, never returned to the client.
	Err error
}

// Forward reports whether the request may continue to the next handler.
func (d Decision) Forward() bool {
	return d.Bypass || d.State == StateAuthenticated
}

// AuthConfig configures the gateway authentication filter.
type AuthConfig struct {
	Verifier           TokenVerifier
	PublicPathPrefixes []string
	Logger             *zerolog.Logger
}

// Filter authenticates gateway requests with the bearer token in the Authorization header.
type Filter struct {
	verifier TokenVerifier
	prefixes []string
	logger   *zerolog.Logger
}

func NewFilter(cfg AuthConfig) *Filter {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Filter{
		verifier: cfg.Verifier,
		prefixes: append([]string(nil), cfg.PublicPathPrefixes...),
		logger:   logger,
	}
}

// Authenticate returns the filter as chi-compatible middleware.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return NewFilter(cfg).Middleware
}

// Evaluate decides what to do with r. It reads only the request, the verifier and the
// allowlist, and has no side effects.
func (f *Filter) Evaluate(r *http.Request) Decision {
	if r.Method == http.MethodOptions || f.isPublic(r.URL) {
		return Decision{State: StateUnauthenticated, Bypass: true}
	}

	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Decision{State: StateRejected, Message: MessageAuthenticationRequired, Err: err}
	}

	return f.verify(token)
}

func (f *Filter) verify(token string) Decision {
	identity, err := f.verifier.Verify(token)
	if err != nil {
		return Decision{State: StateRejected, Message: MessageAuthenticationFailed, Err: err}
	}

	return Decision{State: StateAuthenticated, Identity: identity}
}

type filteredKey struct{}

// Middleware applies the filter. It runs at most once per request even when mounted
// more than once in the chain.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Value(filteredKey{}) != nil {
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), filteredKey{}, true))
		r.Header.Del(auth.HeaderUserID)

		decision := f.Evaluate(r)
		if !decision.Forward() {
			f.logger.Warn().
				Err(decision.Err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request rejected")
			response.Error(w, http.StatusUnauthorized, decision.Message)
			return
		}

		if decision.State == StateAuthenticated {
			r = r.WithContext(auth.WithIdentity(r.Context(), decision.Identity))
			r.Header.Set(auth.HeaderUserID, decision.Identity.UserID)
		}

		next.ServeHTTP(w, r)
	})
}

// isPublic matches the escaped request path against the allowlist.
// Paths carrying dot segments, literal or percent-encoded, are never public.
func (f *Filter) isPublic(u *url.URL) bool {
	requestPath := u.EscapedPath()
	if hasDotSegment(requestPath) {
		return false
	}

	for _, prefix := range f.prefixes {
		if strings.HasPrefix(requestPath, prefix) {
			return true
		}
	}
	return false
}

func hasDotSegment(escapedPath string) bool {
	for _, segment := range strings.Split(escapedPath, "/") {
		decoded, err := url.PathUnescape(segment)
		if err != nil || decoded == "." || decoded == ".." {
			return true
		}
	}
	return false
}
