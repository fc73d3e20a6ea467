/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package overlay

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/Zuplu/sc-overlay/internal/assistant"
	"github.com/Zuplu/sc-overlay/internal/cache"
	"github.com/Zuplu/sc-overlay/internal/status"
	"github.com/Zuplu/sc-overlay/internal/utils/dnsguard"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"github.com/Zuplu/sc-overlay/internal/wiki"
)

type Store = cache.Store[status.Result, wiki.Resolution, wiki.ShipResult]

// Services is the composition root. It owns the caches and wires every
// component to the shared HTTP client.
type Services struct {
	Config    Config
	Store     *Store
	Status    *status.Scraper
	Images    *wiki.Resolver
	Embedder  *wiki.Embedder
	Ships     *wiki.Ships
	Assistant *assistant.Service
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // set minimum to TLSv1.2
			},
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
			ForceAttemptHTTP2:   true,
		},
	}
}

func userAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return "sc-overlay/" + version
}

// NewServices builds every component from config. A nil client selects the
// default transport.
func NewServices(ctx context.Context, config Config, client *http.Client, version string) *Services {
	if client == nil {
		client = newHTTPClient()
	}
	ua := userAgent(version)
	store := cache.NewStore[status.Result, wiki.Resolution, wiki.ShipResult]()

	var guard wiki.Guard
	if g := dnsguard.New(config.Dns.Address); g.Enabled() {
		log.Debugf("Checking image hosts against resolver %s", config.Dns.Address)
		guard = g
	}

	return &Services{
		Config:   config,
		Store:    store,
		Status:   status.NewScraper(config.Status.URL, client, store.Status, ua),
		Images:   wiki.NewResolver(config.Wiki.API, config.Wiki.MediaHost, client, store.Images, ua),
		Embedder: wiki.NewEmbedder(config.Wiki.MediaHost, client, guard, ua),
		Ships:    wiki.NewShips(config.Wiki.ShipsAPI, client, store.Ships, ua),
		Assistant: assistant.New(ctx, assistant.Config{
			APIKey:       config.Assistant.APIKey,
			Model:        config.Assistant.Model,
			EnableSearch: config.Assistant.Search,
			BaseURL:      config.Assistant.BaseURL,
			HTTPClient:   client,
		}),
	}
}

// StatusView is a status result together with its classification.
type StatusView struct {
	status.Result
	Classification status.Classification `json:"classification"`
}

func (s *Services) StatusView(ctx context.Context) StatusView {
	r := s.Status.Fetch(ctx)
	return StatusView{Result: r, Classification: status.ClassifyResult(r)}
}

// AskView is an answer with its optional trailing image split off.
type AskView struct {
	assistant.Answer
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s *Services) Ask(ctx context.Context, question string) AskView {
	ans := s.Assistant.Query(ctx, question)
	if ans.Error {
		return AskView{Answer: ans}
	}
	body, imageURL := assistant.SplitImageMarker(ans.Text)
	ans.Text = body
	return AskView{Answer: ans, ImageURL: imageURL}
}
