// Package enoki is a typed client for the Enoki wallet-authentication
// HTTP API. Only the zkLogin endpoints the proxy needs are covered:
// nonce creation and address derivation. Proof generation and sponsored
// transactions stay on the front-end SDK.
package enoki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

const (
	// Extra validity epochs requested for the ephemeral key. Two
	// epochs (~48h on mainnet) outlives any session this proxy issues.
	additionalEpochs = 2

	headerZkLoginJWT = "zklogin-jwt"

	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	apiKey     string
	network    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func New(conf *config.EnokiConfig) *Client {
	return &Client{
		baseURL:    conf.URL,
		apiKey:     conf.APIKey,
		network:    conf.Network,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), 1),
	}
}

// Nonce is the zkLogin nonce material bound to an ephemeral public key.
type Nonce struct {
	Nonce               string `json:"nonce"`
	Randomness          string `json:"randomness"`
	Epoch               uint64 `json:"epoch"`
	MaxEpoch            uint64 `json:"maxEpoch"`
	EstimatedExpiration int64  `json:"estimatedExpiration"`
}

// Address is the zkLogin address material derived from a verified
// OIDC id_token.
type Address struct {
	Address   string `json:"address"`
	Salt      string `json:"salt"`
	PublicKey string `json:"publicKey"`
}

// APIError is a non-2xx response from the Enoki API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("enoki api error: status %d, code '%s': %s", e.Status, e.Code, e.Message)
}

// CreateNonce registers an ephemeral public key and returns the nonce
// the OIDC authorization request must embed.
func (c *Client) CreateNonce(ctx context.Context, ephemeralPublicKey string) (*Nonce, error) {
	body := map[string]any{
		"network":            c.network,
		"ephemeralPublicKey": ephemeralPublicKey,
		"additionalEpochs":   additionalEpochs,
	}
	var nonce Nonce
	if err := c.do(ctx, http.MethodPost, "/zklogin/nonce", "", body, &nonce); err != nil {
		return nil, fmt.Errorf("failed to create zklogin nonce: %w", err)
	}
	return &nonce, nil
}

// GetAddress derives the zkLogin address and user salt for the id_token
// obtained from the OIDC callback.
func (c *Client) GetAddress(ctx context.Context, jwt string) (*Address, error) {
	var addr Address
	if err := c.do(ctx, http.MethodGet, "/zklogin", jwt, nil, &addr); err != nil {
		return nil, fmt.Errorf("failed to get zklogin address: %w", err)
	}
	return &addr, nil
}

func (c *Client) do(ctx context.Context, method, path, jwt string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if jwt != "" {
		req.Header.Set(headerZkLoginJWT, jwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Errors []struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && len(envelope.Errors) > 0 {
			apiErr.Code = envelope.Errors[0].Code
			apiErr.Message = envelope.Errors[0].Message
		}
		return apiErr
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
