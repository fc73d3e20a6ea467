/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Zuplu/sc-overlay/internal/cache"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"github.com/Zuplu/sc-overlay/internal/utils/valid"
)

const (
	DEFAULT_API        = "https://starcitizen.tools/api.php"
	DEFAULT_MEDIA_HOST = "media.starcitizen.tools"
	THUMBNAIL_WIDTH    = 800
	FILE_SEARCH_LIMIT  = 5
	MAIN_NAMESPACE     = 0
	FILE_NAMESPACE     = 6
)

var (
	ErrNoImage = errors.New("No image found")
	ErrNoTopic = errors.New("Missing topic")
)

// Resolution is the outcome of an image lookup. URL is always on the media host.
type Resolution struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// lookup carries state between the strategies of one resolution.
type lookup struct {
	topic string
	title string
}

// step is one stage of the fallback chain. It returns a non-empty URL to end
// the chain, or an error for transport failures that abort it.
type step struct {
	name    string
	attempt func(ctx context.Context, l *lookup) (string, error)
}

type Resolver struct {
	api       string
	mediaHost string
	userAgent string
	client    *http.Client
	cache     cache.Cache[Resolution]
	steps     []step
}

func NewResolver(api, mediaHost string, client *http.Client, c cache.Cache[Resolution], userAgent string) *Resolver {
	if api == "" {
		api = DEFAULT_API
	}
	if mediaHost == "" {
		mediaHost = DEFAULT_MEDIA_HOST
	}
	if client == nil {
		client = http.DefaultClient
	}
	r := &Resolver{api: api, mediaHost: mediaHost, userAgent: userAgent, client: client, cache: c}
	r.steps = []step{
		{name: "search-title", attempt: r.searchTitle},
		{name: "lead-original", attempt: r.leadImage("original")},
		{name: "lead-thumbnail", attempt: r.leadImage("thumbnail")},
		{name: "file-search", attempt: r.fileSearch},
	}
	return r
}

// Resolve finds an illustrative image for topic. Successful resolutions are
// cached; failures are not.
func (r *Resolver) Resolve(ctx context.Context, topic string) Resolution {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Resolution{Error: ErrNoTopic.Error()}
	}
	key := cache.Key(topic)
	if cached, ok := r.cache.Get(key); ok {
		log.Debugf("Image for %q: %s (from cache)", topic, cached.URL)
		return cached
	}

	l := &lookup{topic: topic}
	for _, s := range r.steps {
		found, err := s.attempt(ctx, l)
		if err != nil {
			log.Warnf("Image lookup for %q failed during %s: %v", topic, s.name, err)
			return Resolution{Error: err.Error()}
		}
		if found != "" {
			log.Debugf("Image for %q: %s (via %s)", topic, found, s.name)
			res := Resolution{OK: true, URL: found}
			r.cache.Set(key, res)
			return res
		}
	}
	log.Debugf("No image for %q", topic)
	return Resolution{Error: ErrNoImage.Error()}
}

func (r *Resolver) accept(candidate string) bool {
	return valid.IsOnHost(candidate, r.mediaHost)
}

func (r *Resolver) searchTitle(ctx context.Context, l *lookup) (string, error) {
	data, err := r.query(ctx, url.Values{
		"list":        {"search"},
		"srsearch":    {l.topic},
		"srnamespace": {strconv.Itoa(MAIN_NAMESPACE)},
		"srlimit":     {"1"},
	})
	if err != nil {
		return "", err
	}
	if len(data.Query.Search) > 0 {
		l.title = strings.TrimSpace(data.Query.Search[0].Title)
	}
	return "", nil
}

func (r *Resolver) leadImage(kind string) func(context.Context, *lookup) (string, error) {
	return func(ctx context.Context, l *lookup) (string, error) {
		if l.title == "" {
			return "", nil
		}
		params := url.Values{
			"titles":    {l.title},
			"prop":      {"pageimages"},
			"piprop":    {kind},
			"redirects": {"1"},
		}
		if kind == "thumbnail" {
			params.Set("pithumbsize", strconv.Itoa(THUMBNAIL_WIDTH))
		}
		data, err := r.query(ctx, params)
		if err != nil {
			return "", err
		}
		for _, pg := range data.Query.Pages {
			src := pg.Original
			if kind == "thumbnail" {
				src = pg.Thumbnail
			}
			if src != nil && r.accept(src.Source) {
				return src.Source, nil
			}
		}
		return "", nil
	}
}

func (r *Resolver) fileSearch(ctx context.Context, l *lookup) (string, error) {
	data, err := r.query(ctx, url.Values{
		"generator":    {"search"},
		"gsrsearch":    {l.topic},
		"gsrnamespace": {strconv.Itoa(FILE_NAMESPACE)},
		"gsrlimit":     {strconv.Itoa(FILE_SEARCH_LIMIT)},
		"prop":         {"imageinfo"},
		"iiprop":       {"url"},
	})
	if err != nil {
		return "", err
	}
	for _, pg := range data.Query.Pages.byRank() {
		for _, info := range pg.ImageInfo {
			if valid.HasImageExtension(info.URL) && r.accept(info.URL) {
				return info.URL, nil
			}
		}
	}
	return "", nil
}
