/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Zuplu/sc-overlay/internal/cache"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
)

const (
	DEFAULT_SHIPS_API = "https://api.star-citizen.wiki/api/ships"
	SHIP_LIMIT        = 5
	SHIPS_FAILURE     = "Unable to fetch Wiki data"
)

type ShipResult struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Error   bool            `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Details string          `json:"details,omitempty"`
}

type Ships struct {
	api       string
	userAgent string
	client    *http.Client
	cache     cache.Cache[ShipResult]
}

func NewShips(api string, client *http.Client, c cache.Cache[ShipResult], userAgent string) *Ships {
	if api == "" {
		api = DEFAULT_SHIPS_API
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ships{api: api, userAgent: userAgent, client: client, cache: c}
}

// NormalizeList accepts either a bare document or an envelope whose "data"
// field is a list, and returns the list when present.
func NormalizeList(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if d := bytes.TrimSpace(envelope.Data); len(d) > 0 && d[0] == '[' {
		return d
	}
	return raw
}

func (s *Ships) Search(ctx context.Context, query string) ShipResult {
	key := cache.Key(query)
	if cached, ok := s.cache.Get(key); ok {
		log.Debugf("Ship search %q (from cache)", key)
		return cached
	}

	data, err := s.fetch(ctx, key)
	if err != nil {
		log.Warnf("Ship search %q failed: %v", key, err)
		return ShipResult{Error: true, Message: SHIPS_FAILURE, Details: err.Error()}
	}
	res := ShipResult{Data: NormalizeList(data)}
	s.cache.Set(key, res)
	return res
}

func (s *Ships) fetch(ctx context.Context, key string) (json.RawMessage, error) {
	u, err := url.Parse(s.api)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if key != "" {
		q.Set("search", key)
	}
	q.Set("limit", strconv.Itoa(SHIP_LIMIT))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Bad response %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_API_BYTES))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON body")
	}
	return body, nil
}
