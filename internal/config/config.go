package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SessionMaxAge bounds both the session and state cookies and the
	// server-side login transactions. Cookie attributes are fixed, so
	// this is a constant rather than configuration.
	SessionMaxAge = 10 * time.Minute

	defaultServerAddr = ":8080"
)

type Config struct {
	Server    ServerConfig      `yaml:"server" json:"server"`
	Providers []*ProviderConfig `yaml:"providers" json:"providers"`
	Enoki     EnokiConfig       `yaml:"enoki" json:"enoki"`
	Proxy     ProxyConfig       `yaml:"proxy" json:"proxy"`
}

func Load() (*Config, error) {
	fileName := "/etc/zklogin-proxy/config/config.yaml"
	if fn := os.Getenv("ZKLOGIN_PROXY_CONFIG"); fn != "" {
		fileName = fn
	}
	var cfg Config
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.ValidateAndInitialize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ValidateAndInitialize() error {
	// Apply defaults.
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.Environment == "" {
		c.Server.Environment = detectEnvironment()
	}
	c.Enoki.applyDefaults()
	if c.Proxy.AllowedRedirectURLs == nil {
		c.Proxy.AllowedRedirectURLs = []string{}
	}
	if c.Proxy.AllowedOrigins == nil {
		c.Proxy.AllowedOrigins = []string{}
	}

	// Validate required fields.
	switch c.Server.Environment {
	case EnvironmentProduction, EnvironmentDevelopment:
	default:
		return fmt.Errorf("server.environment must be one of [%s, %s]",
			EnvironmentProduction, EnvironmentDevelopment)
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("name is empty for providers[%d]", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name: %s", p.Name)
		}
		seen[p.Name] = true
		if p.ClientID == "" {
			return fmt.Errorf("clientID must be set for provider %s", p.Name)
		}
	}
	if c.Enoki.APIKey == "" {
		return fmt.Errorf("enoki.apiKey must be set")
	}

	// Compile regular expressions.
	for _, p := range c.Providers {
		if p.AllowedEmailDomains == nil {
			p.AllowedEmailDomains = []string{}
		}
		if err := buildRegexList(p.AllowedEmailDomains, &p.regexAllowedEmailDomains); err != nil {
			return fmt.Errorf("failed to build regex list for allowed email domains of provider %s: %w", p.Name, err)
		}
	}
	if err := buildRegexList(c.Proxy.AllowedRedirectURLs, &c.Proxy.regexAllowedRedirectURLs); err != nil {
		return fmt.Errorf("failed to build regex list for allowed redirect URLs: %w", err)
	}
	if err := buildRegexList(c.Proxy.AllowedOrigins, &c.Proxy.regexAllowedOrigins); err != nil {
		return fmt.Errorf("failed to build regex list for allowed origins: %w", err)
	}

	return nil
}

func buildRegexList(in []string, out *[]*regexp.Regexp) error {
	for _, s := range in {
		r, err := regexp.Compile(s)
		if err != nil {
			return fmt.Errorf("failed to compile regex '%s': %w", s, err)
		}
		*out = append(*out, r)
	}
	return nil
}

// DefaultProvider returns the first configured provider.
func (c *Config) DefaultProvider() *ProviderConfig {
	return c.Providers[0]
}

func (c *Config) Provider(name string) (*ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
