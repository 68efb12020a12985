package config

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestProxyConfig_ValidateRedirectURL(t *testing.T) {
	tests := []struct {
		name        string
		allowedURLs []string
		url         string
		expected    bool
	}{
		{
			name:     "empty url is always rejected",
			url:      "",
			expected: false,
		},
		{
			name:     "empty allowlist accepts any url",
			url:      "https://anything.example.com/cb",
			expected: true,
		},
		{
			name:        "matching url",
			allowedURLs: []string{`^https://market\.example\.com/auth$`},
			url:         "https://market.example.com/auth",
			expected:    true,
		},
		{
			name:        "non-matching url",
			allowedURLs: []string{`^https://market\.example\.com/auth$`},
			url:         "https://evil.example.com/auth",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			conf := newTestConfig()
			conf.Proxy.AllowedRedirectURLs = tt.allowedURLs
			g.Expect(conf.ValidateAndInitialize()).To(Succeed())

			g.Expect(conf.Proxy.ValidateRedirectURL(tt.url)).To(Equal(tt.expected))
		})
	}
}

func TestProxyConfig_AllowsOrigin(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		expected       bool
	}{
		{
			name:     "empty origin is rejected",
			origin:   "",
			expected: false,
		},
		{
			name:     "empty allowlist rejects everything",
			origin:   "https://market.example.com",
			expected: false,
		},
		{
			name:           "matching origin",
			allowedOrigins: []string{`^https://market\.example\.com$`},
			origin:         "https://market.example.com",
			expected:       true,
		},
		{
			name:           "non-matching origin",
			allowedOrigins: []string{`^https://market\.example\.com$`},
			origin:         "https://evil.example.com",
			expected:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			conf := newTestConfig()
			conf.Proxy.AllowedOrigins = tt.allowedOrigins
			g.Expect(conf.ValidateAndInitialize()).To(Succeed())

			g.Expect(conf.Proxy.AllowsOrigin(tt.origin)).To(Equal(tt.expected))
		})
	}
}
