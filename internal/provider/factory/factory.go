package factory

import (
	"fmt"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
	"github.com/marketplace-labs/zklogin-proxy/internal/provider"
	"github.com/marketplace-labs/zklogin-proxy/internal/provider/google"
	"github.com/marketplace-labs/zklogin-proxy/internal/provider/twitch"
)

const (
	providerGoogle = "google"
	providerTwitch = "twitch"
)

func New(conf *config.ProviderConfig) (provider.Interface, error) {
	switch conf.Name {
	case providerGoogle:
		return google.New(conf)
	case providerTwitch:
		return twitch.New(conf)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", conf.Name)
	}
}

// NewSet builds every configured provider, keyed by name.
func NewSet(conf *config.Config) (map[string]provider.Interface, error) {
	providers := make(map[string]provider.Interface, len(conf.Providers))
	for _, pc := range conf.Providers {
		p, err := New(pc)
		if err != nil {
			return nil, err
		}
		providers[pc.Name] = p
	}
	return providers, nil
}
