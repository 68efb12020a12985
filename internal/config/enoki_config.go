package config

const (
	defaultEnokiURL     = "https://api.enoki.mystenlabs.com/v1"
	defaultEnokiNetwork = "mainnet"

	// The public Enoki API throttles aggressively; the client keeps
	// itself below the documented per-key limit by default.
	defaultEnokiRequestsPerSecond = 10
)

type EnokiConfig struct {
	APIKey            string  `yaml:"apiKey" json:"apiKey"`
	Network           string  `yaml:"network" json:"network"`
	URL               string  `yaml:"url" json:"url"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond" json:"requestsPerSecond"`
}

func (e *EnokiConfig) applyDefaults() {
	if e.URL == "" {
		e.URL = defaultEnokiURL
	}
	if e.Network == "" {
		e.Network = defaultEnokiNetwork
	}
	if e.RequestsPerSecond <= 0 {
		e.RequestsPerSecond = defaultEnokiRequestsPerSecond
	}
}
