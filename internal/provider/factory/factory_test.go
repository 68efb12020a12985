package factory

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		providerName string
		wantErr      string
	}{
		{name: "google", providerName: "google"},
		{name: "twitch", providerName: "twitch"},
		{name: "unsupported", providerName: "facebook", wantErr: "unsupported provider: facebook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			p, err := New(&config.ProviderConfig{Name: tt.providerName, ClientID: "id"})

			if tt.wantErr != "" {
				g.Expect(err).To(HaveOccurred())
				g.Expect(err.Error()).To(Equal(tt.wantErr))
				g.Expect(p).To(BeNil())
				return
			}
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(p).ToNot(BeNil())
		})
	}
}

func TestNewSet(t *testing.T) {
	t.Run("all configured providers", func(t *testing.T) {
		g := NewWithT(t)

		conf := &config.Config{
			Providers: []*config.ProviderConfig{
				{Name: "google", ClientID: "g"},
				{Name: "twitch", ClientID: "t"},
			},
		}

		providers, err := NewSet(conf)

		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(providers).To(HaveLen(2))
		g.Expect(providers).To(HaveKey("google"))
		g.Expect(providers).To(HaveKey("twitch"))
	})

	t.Run("propagates factory errors", func(t *testing.T) {
		g := NewWithT(t)

		conf := &config.Config{
			Providers: []*config.ProviderConfig{
				{Name: "apple", ClientID: "a"},
			},
		}

		providers, err := NewSet(conf)

		g.Expect(err).To(HaveOccurred())
		g.Expect(providers).To(BeNil())
	})
}
