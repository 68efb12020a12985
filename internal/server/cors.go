package server

import (
	"net/http"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

// handleCORS wraps the API for the browser front-end, which lives on
// a different origin. Responses are credentialed (cookies), so the
// origin is echoed back only when it matches the allowlist; the
// wildcard is never used.
func handleCORS(api http.Handler, conf *config.ProxyConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && conf.AllowsOrigin(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		api.ServeHTTP(w, r)
	})
}
