/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package status

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Zuplu/sc-overlay/internal/cache"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
)

const (
	DEFAULT_URL    = "https://status.robertsspaceindustries.com"
	CACHE_KEY      = "summary"
	SCRAPE_FAILURE = "Failed to scrape RSI status"
	MAX_PAGE_BYTES = 4 << 20
)

// Result is either a scraped summary or an error, never both.
type Result struct {
	OverallText string `json:"overallText"`
	Error       bool   `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
	Details     string `json:"details,omitempty"`
}

func failure(details string) Result {
	return Result{Error: true, Message: SCRAPE_FAILURE, Details: details}
}

type Scraper struct {
	url       string
	userAgent string
	client    *http.Client
	cache     cache.Cache[Result]
}

func NewScraper(url string, client *http.Client, c cache.Cache[Result], userAgent string) *Scraper {
	if url == "" {
		url = DEFAULT_URL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{url: url, userAgent: userAgent, client: client, cache: c}
}

// Fetch returns the cached summary when fresh, otherwise scrapes the status page.
// Failures are reported in the Result and never cached.
func (s *Scraper) Fetch(ctx context.Context) Result {
	if cached, ok := s.cache.Get(CACHE_KEY); ok {
		log.Debugf("Status %q (from cache)", cached.OverallText)
		return cached
	}

	html, err := s.download(ctx)
	if err != nil {
		log.Warnf("Could not scrape status page %s: %v", s.url, err)
		return failure(err.Error())
	}

	data := Result{OverallText: Extract(html)}
	s.cache.Set(CACHE_KEY, data)
	log.Debugf("Status %q (scraped)", data.OverallText)
	return data
}

func (s *Scraper) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_PAGE_BYTES))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}
