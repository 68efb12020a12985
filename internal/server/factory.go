package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marketplace-labs/zklogin-proxy/internal/config"
	"github.com/marketplace-labs/zklogin-proxy/internal/enoki"
	"github.com/marketplace-labs/zklogin-proxy/internal/flow"
	"github.com/marketplace-labs/zklogin-proxy/internal/issuer"
	providerfactory "github.com/marketplace-labs/zklogin-proxy/internal/provider/factory"
	"github.com/marketplace-labs/zklogin-proxy/internal/store"
)

func New(conf *config.Config) (*http.Server, error) {
	providers, err := providerfactory.NewSet(conf)
	if err != nil {
		return nil, err
	}
	iss := issuer.New()
	f := flow.New(conf, providers, enoki.New(&conf.Enoki), iss, store.NewMemoryStore(), time.Now)
	api := newAPI(f, iss, conf, prometheus.DefaultRegisterer)
	return newServer(conf, api, prometheus.DefaultRegisterer, prometheus.DefaultGatherer), nil
}
