// Package flow owns the zkLogin sign-in lifecycle: building the
// authorization URL, completing the OAuth callback and deriving the
// browser session. It only ever touches the browser through the KV
// interface, so transports other than cookies stay possible in tests.
package flow

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
	"github.com/marketplace-labs/zklogin-proxy/internal/constants"
	"github.com/marketplace-labs/zklogin-proxy/internal/enoki"
	"github.com/marketplace-labs/zklogin-proxy/internal/issuer"
	"github.com/marketplace-labs/zklogin-proxy/internal/logging"
	"github.com/marketplace-labs/zklogin-proxy/internal/provider"
	"github.com/marketplace-labs/zklogin-proxy/internal/store"
)

// suiEd25519Flag prefixes ed25519 public keys in the Sui key wire
// format expected by the Enoki nonce endpoint.
const suiEd25519Flag = 0x00

// EnokiAPI is the slice of the Enoki client the flow depends on.
type EnokiAPI interface {
	CreateNonce(ctx context.Context, ephemeralPublicKey string) (*enoki.Nonce, error)
	GetAddress(ctx context.Context, jwt string) (*enoki.Address, error)
}

type Flow struct {
	conf      *config.Config
	providers map[string]provider.Interface
	enoki     EnokiAPI
	issuer    issuer.Issuer
	store     store.Store
	nowFunc   func() time.Time
}

func New(conf *config.Config, providers map[string]provider.Interface,
	enokiAPI EnokiAPI, iss issuer.Issuer, st store.Store, nowFunc func() time.Time) *Flow {

	return &Flow{
		conf:      conf,
		providers: providers,
		enoki:     enokiAPI,
		issuer:    iss,
		store:     st,
		nowFunc:   nowFunc,
	}
}

// CreateAuthorizationURL starts a login: it generates an ephemeral
// keypair, obtains a zkLogin nonce bound to it, stores the pending
// transaction server-side and writes its key into the state cookie.
func (f *Flow) CreateAuthorizationURL(ctx context.Context, kv KV,
	host, providerName, redirectURL string) (string, error) {

	if providerName == "" {
		providerName = f.conf.DefaultProvider().Name
	}
	p, ok := f.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unsupported provider: %s", providerName)
	}

	if !f.conf.Proxy.ValidateRedirectURL(redirectURL) {
		return "", fmt.Errorf("%s is not in the allow list: %s", constants.QueryParamRedirectURI, redirectURL)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ephemeral keypair: %w", err)
	}
	ephemeralPublicKey := base64.StdEncoding.EncodeToString(append([]byte{suiEd25519Flag}, pub...))

	nonce, err := f.enoki.CreateNonce(ctx, ephemeralPublicKey)
	if err != nil {
		return "", err
	}

	tx := &store.Transaction{
		Provider:            providerName,
		EphemeralPrivateKey: base64.StdEncoding.EncodeToString(priv),
		EphemeralPublicKey:  ephemeralPublicKey,
		Randomness:          nonce.Randomness,
		Nonce:               nonce.Nonce,
		MaxEpoch:            nonce.MaxEpoch,
		RedirectURL:         redirectURL,
		Host:                host,
	}
	state, err := f.store.StoreTransaction(tx)
	if err != nil {
		return "", fmt.Errorf("failed to store login transaction: %w", err)
	}

	kv.Set(StateCookieName, state)

	logging.FromContext(ctx).WithField("provider", providerName).Debug("login transaction created")

	return p.AuthorizationURL(redirectURL, state, nonce.Nonce), nil
}

// HandleAuthCallback completes a login from the OAuth hash fragment
// the front-end posted back. On success the session cookie is set and
// the state cookie is cleared.
func (f *Flow) HandleAuthCallback(ctx context.Context, kv KV, host, hash string) error {
	idToken, state, err := parseHashFragment(hash)
	if err != nil {
		return err
	}

	cookieState, ok := kv.Get(StateCookieName)
	if !ok {
		return fmt.Errorf("%w: state cookie missing", ErrStateMismatch)
	}
	kv.Delete(StateCookieName)
	if state != cookieState {
		return ErrStateMismatch
	}

	tx, ok := f.store.RetrieveTransaction(cookieState)
	if !ok {
		return ErrTransactionExpired
	}
	if tx.Host != host {
		return fmt.Errorf("host mismatch")
	}

	p, ok := f.providers[tx.Provider]
	if !ok {
		return fmt.Errorf("unsupported provider: %s", tx.Provider)
	}
	claims, err := p.VerifyIDToken(ctx, idToken, tx.Nonce)
	if err != nil {
		return fmt.Errorf("failed to verify id token: %w", err)
	}

	addr, err := f.enoki.GetAddress(ctx, idToken)
	if err != nil {
		return err
	}

	iss := issuerURL(host)
	token, _, err := f.issuer.Issue(iss, claims.Subject, iss, f.nowFunc(), issuer.SessionClaims{
		Address:  addr.Address,
		Provider: tx.Provider,
		Email:    claims.Email,
	})
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}

	kv.Set(SessionCookieName, token)

	logging.FromContext(ctx).WithField("login", map[string]any{
		"provider": tx.Provider,
		"address":  addr.Address,
	}).Info("login completed")

	return nil
}

// Session reads and verifies the session cookie.
func (f *Flow) Session(kv KV, host string) (*Session, error) {
	token, ok := kv.Get(SessionCookieName)
	if !ok || token == "" {
		return nil, ErrNoSession
	}

	iss := issuerURL(host)
	claims, ok := f.issuer.Verify(token, f.nowFunc(), iss, iss)
	if !ok {
		return nil, ErrNoSession
	}

	return &Session{
		Address:   claims.Address,
		Provider:  claims.Provider,
		Subject:   claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout clears the session cookie.
func (f *Flow) Logout(kv KV) {
	kv.Delete(SessionCookieName)
}

// parseHashFragment extracts id_token and state from the URL fragment
// relayed by the front-end, e.g. "#id_token=...&state=...".
func parseHashFragment(hash string) (idToken, state string, err error) {
	params, parseErr := url.ParseQuery(strings.TrimPrefix(hash, "#"))
	if parseErr != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidHash, parseErr)
	}
	idToken = params.Get(constants.HashParamIDToken)
	state = params.Get(constants.HashParamState)
	if idToken == "" {
		return "", "", fmt.Errorf("%w: missing %s", ErrInvalidHash, constants.HashParamIDToken)
	}
	if state == "" {
		return "", "", fmt.Errorf("%w: missing %s", ErrInvalidHash, constants.HashParamState)
	}
	return idToken, state, nil
}

func issuerURL(host string) string {
	return fmt.Sprintf("https://%s", host)
}
