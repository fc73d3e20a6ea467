/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package wiki

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"github.com/Zuplu/sc-overlay/internal/utils/valid"
)

const (
	MAX_IMAGE_BYTES  = 8 << 20
	MAX_REDIRECTS    = 5
	EMBED_INVALID    = "invalid_url"
	EMBED_OFF_HOST   = "off_host"
	EMBED_BLOCKED    = "blocked_address"
	EMBED_TRANSPORT  = "transport"
	EMBED_HTTP       = "http"
	EMBED_NOT_IMAGE  = "not_image"
	EMBED_TOO_LARGE  = "too_large"
	DEFAULT_IMG_TYPE = "image/jpeg"
)

// ImageData is an image re-encoded for inline display.
type ImageData struct {
	OK          bool   `json:"ok"`
	ContentType string `json:"contentType,omitempty"`
	Data        string `json:"data,omitempty"`
	DataURL     string `json:"dataUrl,omitempty"`
	Error       string `json:"error,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Guard vets a host before any bytes are requested from it.
type Guard interface {
	Check(ctx context.Context, host string) error
}

type Embedder struct {
	mediaHost string
	userAgent string
	client    *http.Client
	guard     Guard
}

// NewEmbedder copies client and restricts its redirects to the media host.
func NewEmbedder(mediaHost string, client *http.Client, guard Guard, userAgent string) *Embedder {
	if mediaHost == "" {
		mediaHost = DEFAULT_MEDIA_HOST
	}
	if client == nil {
		client = http.DefaultClient
	}
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= MAX_REDIRECTS {
			return errors.New("too many redirects")
		}
		if !valid.IsOnHost(req.URL.String(), mediaHost) {
			return fmt.Errorf("redirect to %q not allowed", req.URL.Host)
		}
		return nil
	}
	return &Embedder{mediaHost: mediaHost, userAgent: userAgent, client: &c, guard: guard}
}

func embedFailure(reason, msg string) ImageData {
	return ImageData{Error: msg, Reason: reason}
}

// Fetch downloads rawURL and returns it as base64 with its content type.
// Anything that is not an http(s) URL on the media host is rejected locally.
func (e *Embedder) Fetch(ctx context.Context, rawURL string) ImageData {
	rawURL = strings.TrimSpace(rawURL)
	if !valid.IsHTTPURL(rawURL) {
		return embedFailure(EMBED_INVALID, "Invalid image URL")
	}
	if !valid.IsOnHost(rawURL, e.mediaHost) {
		return embedFailure(EMBED_OFF_HOST, "Image host not allowed")
	}
	if e.guard != nil {
		if err := e.guard.Check(ctx, e.mediaHost); err != nil {
			log.Warnf("Refusing to fetch %s: %v", rawURL, err)
			return embedFailure(EMBED_BLOCKED, err.Error())
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return embedFailure(EMBED_INVALID, err.Error())
	}
	req.Header.Set("Accept", "image/*")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		log.Warnf("Could not fetch image %s: %v", rawURL, err)
		return embedFailure(EMBED_TRANSPORT, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return embedFailure(EMBED_HTTP, fmt.Sprintf("Image HTTP %d", resp.StatusCode))
	}

	contentType := DEFAULT_IMG_TYPE
	if header := resp.Header.Get("Content-Type"); header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil || !strings.HasPrefix(mediaType, "image/") {
			return embedFailure(EMBED_NOT_IMAGE, fmt.Sprintf("Unexpected content type %q", header))
		}
		contentType = mediaType
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_IMAGE_BYTES+1))
	if err != nil {
		return embedFailure(EMBED_TRANSPORT, err.Error())
	}
	if len(body) > MAX_IMAGE_BYTES {
		return embedFailure(EMBED_TOO_LARGE, "Image too large")
	}

	data := base64.StdEncoding.EncodeToString(body)
	return ImageData{
		OK:          true,
		ContentType: contentType,
		Data:        data,
		DataURL:     "data:" + contentType + ";base64," + data,
	}
}
