package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

func TestCookieKV_Set(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedSecure bool
	}{
		{name: "development", environment: config.EnvironmentDevelopment, expectedSecure: false},
		{name: "production", environment: config.EnvironmentProduction, expectedSecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			conf := newTestConfig(t)
			conf.Server.Environment = tt.environment

			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
			kv := newCookieKV(rec, r, conf)

			kv.Set("zklogin-session", "token-value")

			cookies := rec.Result().Cookies()
			g.Expect(cookies).To(HaveLen(1))
			c := cookies[0]
			g.Expect(c.Name).To(Equal("zklogin-session"))
			g.Expect(c.Value).To(Equal("token-value"))
			g.Expect(c.Path).To(Equal("/"))
			g.Expect(c.MaxAge).To(Equal(600))
			g.Expect(c.HttpOnly).To(BeTrue())
			g.Expect(c.Secure).To(Equal(tt.expectedSecure))
			g.Expect(c.SameSite).To(Equal(http.SameSiteLaxMode))
		})
	}
}

func TestCookieKV_Get(t *testing.T) {
	g := NewWithT(t)

	conf := newTestConfig(t)
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	r.AddCookie(&http.Cookie{Name: "zklogin-state", Value: "from-request"})
	kv := newCookieKV(rec, r, conf)

	// Request cookies are visible.
	v, ok := kv.Get("zklogin-state")
	g.Expect(ok).To(BeTrue())
	g.Expect(v).To(Equal("from-request"))

	// Unknown cookies are not.
	_, ok = kv.Get("zklogin-session")
	g.Expect(ok).To(BeFalse())

	// Writes shadow the request within the same request.
	kv.Set("zklogin-state", "overwritten")
	v, ok = kv.Get("zklogin-state")
	g.Expect(ok).To(BeTrue())
	g.Expect(v).To(Equal("overwritten"))

	kv.Set("zklogin-session", "fresh")
	v, ok = kv.Get("zklogin-session")
	g.Expect(ok).To(BeTrue())
	g.Expect(v).To(Equal("fresh"))
}

func TestCookieKV_Delete(t *testing.T) {
	g := NewWithT(t)

	conf := newTestConfig(t)
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: "zklogin-session", Value: "stale"})
	kv := newCookieKV(rec, r, conf)

	kv.Delete("zklogin-session")

	// Deletion wins over the request cookie.
	_, ok := kv.Get("zklogin-session")
	g.Expect(ok).To(BeFalse())

	cookies := rec.Result().Cookies()
	g.Expect(cookies).To(HaveLen(1))
	g.Expect(cookies[0].Name).To(Equal("zklogin-session"))
	g.Expect(cookies[0].MaxAge).To(BeNumerically("<", 0))
	g.Expect(cookies[0].Path).To(Equal("/"))
}
