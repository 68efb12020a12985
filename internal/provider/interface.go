package provider

import (
	"context"
)

// Claims are the verified fields the proxy keeps from an OIDC id_token.
type Claims struct {
	Subject string
	Email   string
	Issuer  string
}

// Interface abstracts an OIDC provider supported by zkLogin. The
// implicit flow puts the id_token in the callback URL fragment, so
// there is no token exchange: providers only build authorization URLs
// and verify the id_token that comes back.
type Interface interface {
	AuthorizationURL(redirectURL, state, nonce string) string
	VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (*Claims, error)
}
