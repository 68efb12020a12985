package issuer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

const (
	tokenDuration = config.SessionMaxAge
)

func Algorithm() jwa.SignatureAlgorithm { return jwa.RS256() }

// SessionClaims are the application claims embedded in session tokens.
type SessionClaims struct {
	Address  string
	Provider string
	Email    string
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	SessionClaims
}

type Issuer interface {
	Issue(iss, sub, aud string, now time.Time, claims SessionClaims) (string, time.Time, error)
	Verify(token string, now time.Time, iss, aud string) (*TokenClaims, bool)
	PublicKeys(now time.Time) []jwk.Key
}

type tokenIssuer struct{ privateKeySource }

func New() Issuer {
	return &tokenIssuer{&automaticPrivateKeySource{}}
}

func (t *tokenIssuer) Issue(iss, sub, aud string, now time.Time, claims SessionClaims) (string, time.Time, error) {
	cur, err := t.current(now)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get current private key: %w", err)
	}
	keyID, ok := cur.KeyID()
	if !ok {
		return "", time.Time{}, fmt.Errorf("private key has no key ID")
	}

	exp := now.Add(tokenDuration)
	nbf := now
	iat := now
	jti := uuid.NewString()

	tok, err := jwt.NewBuilder().
		Issuer(iss).
		Subject(sub).
		Audience([]string{aud}).
		Expiration(exp).
		NotBefore(nbf).
		IssuedAt(iat).
		JwtID(jti).
		Claim("address", claims.Address).
		Claim("provider", claims.Provider).
		Claim("email", claims.Email).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token: %w", err)
	}

	b, err := jwt.Sign(tok, jwt.WithKey(Algorithm(), cur))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	signedJWT := string(b)

	// Log the token issuance.
	b, _ = json.Marshal(tok)
	var logClaims map[string]any
	_ = json.Unmarshal(b, &logClaims)
	logData := logrus.Fields{
		jwk.KeyIDKey: keyID,
		"claims":     logClaims,
	}
	logrus.WithField("token", logData).Info("session token issued")

	return signedJWT, exp, nil
}

func (t *tokenIssuer) Verify(token string, now time.Time, iss, aud string) (*TokenClaims, bool) {
	for _, key := range t.publicKeys(now) {

		tok, err := jwt.ParseString(token,
			jwt.WithKey(Algorithm(), key),
			jwt.WithIssuer(iss),
			jwt.WithAudience(aud))
		if err != nil {
			continue
		}

		exp, ok := tok.Expiration()
		if !ok || now.After(exp) {
			continue
		}

		claims := &TokenClaims{ExpiresAt: exp}
		claims.Subject, _ = tok.Subject()
		_ = tok.Get("address", &claims.Address)
		_ = tok.Get("provider", &claims.Provider)
		_ = tok.Get("email", &claims.Email)
		return claims, true
	}
	return nil, false
}

func (t *tokenIssuer) PublicKeys(now time.Time) []jwk.Key {
	return t.publicKeys(now)
}
