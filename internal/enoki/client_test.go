package enoki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

func newTestClient(url string) *Client {
	conf := &config.EnokiConfig{
		APIKey:  "enoki_test_key",
		Network: "testnet",
		URL:     url,
	}
	conf.RequestsPerSecond = 1000
	c := New(conf)
	return c
}

func TestClient_CreateNonce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := NewWithT(t)

		var gotReq struct {
			Network            string `json:"network"`
			EphemeralPublicKey string `json:"ephemeralPublicKey"`
			AdditionalEpochs   int    `json:"additionalEpochs"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Method).To(Equal(http.MethodPost))
			g.Expect(r.URL.Path).To(Equal("/zklogin/nonce"))
			g.Expect(r.Header.Get("Authorization")).To(Equal("Bearer enoki_test_key"))
			g.Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			g.Expect(json.NewDecoder(r.Body).Decode(&gotReq)).To(Succeed())

			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"nonce":               "test-nonce",
					"randomness":          "123456789",
					"epoch":               100,
					"maxEpoch":            102,
					"estimatedExpiration": 1700000000000,
				},
			})
		}))
		defer srv.Close()

		nonce, err := newTestClient(srv.URL).CreateNonce(context.Background(), "AIpub")

		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(nonce.Nonce).To(Equal("test-nonce"))
		g.Expect(nonce.Randomness).To(Equal("123456789"))
		g.Expect(nonce.Epoch).To(Equal(uint64(100)))
		g.Expect(nonce.MaxEpoch).To(Equal(uint64(102)))

		g.Expect(gotReq.Network).To(Equal("testnet"))
		g.Expect(gotReq.EphemeralPublicKey).To(Equal("AIpub"))
		g.Expect(gotReq.AdditionalEpochs).To(Equal(additionalEpochs))
	})

	t.Run("api error envelope", func(t *testing.T) {
		g := NewWithT(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]any{{
					"code":    "forbidden",
					"message": "api key not allowed for network",
				}},
			})
		}))
		defer srv.Close()

		nonce, err := newTestClient(srv.URL).CreateNonce(context.Background(), "AIpub")

		g.Expect(nonce).To(BeNil())
		g.Expect(err).To(HaveOccurred())

		var apiErr *APIError
		g.Expect(errors.As(err, &apiErr)).To(BeTrue())
		g.Expect(apiErr.Status).To(Equal(http.StatusForbidden))
		g.Expect(apiErr.Code).To(Equal("forbidden"))
		g.Expect(apiErr.Message).To(Equal("api key not allowed for network"))
	})
}

func TestClient_GetAddress(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := NewWithT(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Method).To(Equal(http.MethodGet))
			g.Expect(r.URL.Path).To(Equal("/zklogin"))
			g.Expect(r.Header.Get("Authorization")).To(Equal("Bearer enoki_test_key"))
			g.Expect(r.Header.Get(headerZkLoginJWT)).To(Equal("raw-jwt"))

			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"address":   "0xabc123",
					"salt":      "987654321",
					"publicKey": "zkpub",
				},
			})
		}))
		defer srv.Close()

		addr, err := newTestClient(srv.URL).GetAddress(context.Background(), "raw-jwt")

		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(addr.Address).To(Equal("0xabc123"))
		g.Expect(addr.Salt).To(Equal("987654321"))
		g.Expect(addr.PublicKey).To(Equal("zkpub"))
	})

	t.Run("malformed data", func(t *testing.T) {
		g := NewWithT(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": "not-an-object"}`))
		}))
		defer srv.Close()

		addr, err := newTestClient(srv.URL).GetAddress(context.Background(), "raw-jwt")

		g.Expect(addr).To(BeNil())
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("failed to decode response data"))
	})

	t.Run("canceled context", func(t *testing.T) {
		g := NewWithT(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(srv.URL).GetAddress(ctx, "raw-jwt")

		g.Expect(err).To(HaveOccurred())
	})
}

func TestAPIError_Error(t *testing.T) {
	g := NewWithT(t)

	err := &APIError{Status: 429, Code: "rate_limited", Message: "slow down"}

	g.Expect(err.Error()).To(Equal("enoki api error: status 429, code 'rate_limited': slow down"))
}
