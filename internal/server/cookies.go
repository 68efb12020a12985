package server

import (
	"net/http"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

// cookieKV adapts a request/response pair to the flow.KV interface.
// Every cookie it writes carries the same fixed attributes: HttpOnly,
// SameSite=Lax, Path=/, MaxAge of the session TTL, and Secure outside
// development. Writes are kept in an overlay so that a Get issued
// later in the same request observes them, like a browser would on
// the next one.
type cookieKV struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	maxAge  int
	overlay map[string]*string
}

func newCookieKV(w http.ResponseWriter, r *http.Request, conf *config.Config) *cookieKV {
	return &cookieKV{
		w:       w,
		r:       r,
		secure:  conf.Server.SecureCookies(),
		maxAge:  int(config.SessionMaxAge.Seconds()),
		overlay: make(map[string]*string),
	}
}

func (c *cookieKV) Get(name string) (string, bool) {
	if v, ok := c.overlay[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (c *cookieKV) Set(name, value string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   c.maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.overlay[name] = &value
}

func (c *cookieKV) Delete(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:   name,
		Path:   "/",
		MaxAge: -1,
	})
	c.overlay[name] = nil
}
