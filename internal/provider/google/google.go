package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
	"github.com/marketplace-labs/zklogin-proxy/internal/constants"
	"github.com/marketplace-labs/zklogin-proxy/internal/provider"
)

type googleProvider struct {
	conf *config.ProviderConfig

	validateToken func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func New(conf *config.ProviderConfig) (provider.Interface, error) {
	return &googleProvider{conf: conf, validateToken: validateToken}, nil
}

func validateToken(ctx context.Context, idToken, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

// AuthorizationURL implements provider.Interface.
func (g *googleProvider) AuthorizationURL(redirectURL, state, nonce string) string {
	c := &oauth2.Config{
		ClientID:    g.conf.ClientID,
		RedirectURL: redirectURL,
		Endpoint:    google.Endpoint,
		Scopes:      []string{"openid", "email"},
	}
	return c.AuthCodeURL(state,
		oauth2.SetAuthURLParam(constants.QueryParamResponseType, constants.AuthorizationResponseType),
		oauth2.SetAuthURLParam(constants.QueryParamNonce, nonce))
}

// VerifyIDToken implements provider.Interface.
func (g *googleProvider) VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (*provider.Claims, error) {
	payload, err := g.validateToken(ctx, rawIDToken, g.conf.ClientID)
	if err != nil {
		return nil, fmt.Errorf("error verifying google id token: %w", err)
	}

	if tokenNonce, _ := payload.Claims["nonce"].(string); tokenNonce != nonce {
		return nil, fmt.Errorf("nonce mismatch in google id token")
	}

	email, _ := payload.Claims["email"].(string)
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, fmt.Errorf("google email '%s' is not verified", email)
	}
	if !g.conf.ValidateEmailDomain(email) {
		return nil, fmt.Errorf("the domain of the email '%s' is not allowed", email)
	}

	return &provider.Claims{
		Subject: payload.Subject,
		Email:   email,
		Issuer:  payload.Issuer,
	}, nil
}
