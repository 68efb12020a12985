package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
	"github.com/marketplace-labs/zklogin-proxy/internal/enoki"
	"github.com/marketplace-labs/zklogin-proxy/internal/flow"
	"github.com/marketplace-labs/zklogin-proxy/internal/issuer"
	"github.com/marketplace-labs/zklogin-proxy/internal/logging"
)

const (
	pathLogin    = "/api/auth/login"
	pathCallback = "/api/auth/callback"
	pathSession  = "/api/auth/session"
	pathLogout   = "/api/auth/logout"

	// The marketplace API verifies session tokens against this set.
	pathJWKS = "/.well-known/jwks.json"
)

func newAPI(f *flow.Flow, ti issuer.Issuer, conf *config.Config,
	promRegisterer prometheus.Registerer) http.Handler {

	loginsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zklogin_proxy_logins_total",
		Help: "Completed login attempts by provider and outcome",
	}, []string{"provider", "status"})
	promRegisterer.MustRegister(loginsTotal)

	mux := http.NewServeMux()

	mux.HandleFunc("POST "+pathLogin, func(w http.ResponseWriter, r *http.Request) {
		l := logging.FromRequest(r)

		var req struct {
			Provider    string `json:"provider"`
			RedirectURL string `json:"redirectUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			l.WithError(err).Error("failed to parse request body as JSON")
			respondError(w, r, http.StatusBadRequest, "Failed to parse request body as JSON")
			return
		}

		kv := newCookieKV(w, r, conf)
		authURL, err := f.CreateAuthorizationURL(r.Context(), kv, r.Host, req.Provider, req.RedirectURL)
		if err != nil {
			l.WithError(err).Error("failed to create authorization URL")
			respondError(w, r, http.StatusBadRequest, "Failed to create authorization URL")
			return
		}

		respondData(w, r, http.StatusOK, map[string]any{"authorizationUrl": authURL})
	})

	mux.HandleFunc("POST "+pathCallback, func(w http.ResponseWriter, r *http.Request) {
		l := logging.FromRequest(r)

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			l.WithError(err).Error("failed to parse request body as JSON")
			respondError(w, r, http.StatusBadRequest, "Failed to parse request body as JSON")
			return
		}
		hash, ok := body["hash"].(string)
		if !ok || hash == "" {
			respondError(w, r, http.StatusBadRequest, "Missing or invalid hash")
			return
		}

		kv := newCookieKV(w, r, conf)
		if err := f.HandleAuthCallback(r.Context(), kv, r.Host, hash); err != nil {
			l.WithError(err).Error("failed to handle auth callback")
			loginsTotal.WithLabelValues("unknown", "error").Inc()
			status, msg := callbackErrorStatus(err)
			respondError(w, r, status, msg)
			return
		}

		s, err := f.Session(kv, r.Host)
		if err != nil {
			l.WithError(err).Error("failed to load session after callback")
			respondError(w, r, http.StatusInternalServerError, "Failed to load session")
			return
		}
		loginsTotal.WithLabelValues(s.Provider, "success").Inc()

		respondData(w, r, http.StatusOK, s)
	})

	mux.HandleFunc("GET "+pathSession, func(w http.ResponseWriter, r *http.Request) {
		kv := newCookieKV(w, r, conf)
		s, err := f.Session(kv, r.Host)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "No active session")
			return
		}
		respondData(w, r, http.StatusOK, s)
	})

	mux.HandleFunc("POST "+pathLogout, func(w http.ResponseWriter, r *http.Request) {
		kv := newCookieKV(w, r, conf)
		f.Logout(kv)
		respondData(w, r, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("GET "+pathJWKS, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]any{
			"keys": ti.PublicKeys(time.Now()),
		})
	})

	return mux
}

// callbackErrorStatus translates flow errors into response statuses:
// malformed input and stale transactions are the client's to fix,
// upstream wallet-API failures are gateway errors, and everything
// else (id_token verification included) is an authentication failure.
func callbackErrorStatus(err error) (int, string) {
	var apiErr *enoki.APIError
	switch {
	case errors.Is(err, flow.ErrInvalidHash):
		return http.StatusBadRequest, "Invalid hash"
	case errors.Is(err, flow.ErrStateMismatch):
		return http.StatusForbidden, "State mismatch"
	case errors.Is(err, flow.ErrTransactionExpired):
		return http.StatusBadRequest, "Login expired"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "Wallet authentication service failed"
	default:
		return http.StatusUnauthorized, "Authentication failed"
	}
}
