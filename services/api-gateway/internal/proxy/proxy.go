package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
)

const messageUpstreamUnavailable = "Upstream service unavailable"

// New returns a reverse proxy to target. The upstream receives X-User-Id only when the
// request context carries a verified identity; any client-supplied value is dropped.
func New(logger *zerolog.Logger, name string, target *url.URL) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			r.Out.Host = target.Host

			r.Out.Header.Del(auth.HeaderUserID)
			if identity, ok := auth.IdentityFromContext(r.In.Context()); ok {
				r.Out.Header.Set(auth.HeaderUserID, identity.UserID)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error().
				Err(err).
				Str("upstream", name).
				Str("path", r.URL.Path).
				Msg("proxy request failed")
			response.Error(w, http.StatusBadGateway, messageUpstreamUnavailable)
		},
	}
}
