package config

import "regexp"

type ProxyConfig struct {
	AllowedRedirectURLs []string `yaml:"allowedRedirectURLs" json:"allowedRedirectURLs"`
	CORS                bool     `yaml:"cors" json:"cors"`
	AllowedOrigins      []string `yaml:"allowedOrigins" json:"allowedOrigins"`

	regexAllowedRedirectURLs []*regexp.Regexp
	regexAllowedOrigins      []*regexp.Regexp
}

func (p *ProxyConfig) ValidateRedirectURL(url string) bool {
	if url == "" {
		return false
	}
	if len(p.regexAllowedRedirectURLs) == 0 {
		return true
	}
	for _, r := range p.regexAllowedRedirectURLs {
		if r.MatchString(url) {
			return true
		}
	}
	return false
}

// AllowsOrigin reports whether the CORS wrapper may echo the given
// Origin back. With credentialed requests the wildcard is not an
// option, so an empty allowlist means no origin is allowed.
func (p *ProxyConfig) AllowsOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, r := range p.regexAllowedOrigins {
		if r.MatchString(origin) {
			return true
		}
	}
	return false
}
