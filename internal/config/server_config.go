package config

import "cloud.google.com/go/compute/metadata"

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	Environment string `yaml:"environment" json:"environment"`
}

// SecureCookies tells whether cookies must carry the Secure attribute.
// Browsers reject Secure cookies on plain-HTTP localhost setups, so the
// attribute is conditional on the environment.
func (s *ServerConfig) SecureCookies() bool {
	return s.Environment == EnvironmentProduction
}

func detectEnvironment() string {
	if metadata.OnGCE() {
		return EnvironmentProduction
	}
	return EnvironmentDevelopment
}
