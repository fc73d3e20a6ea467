/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/Zuplu/sc-overlay/internal/utils/log"
)

const MAX_API_BYTES = 2 << 20

type imageSource struct {
	Source string `json:"source"`
}

type imageInfo struct {
	URL string `json:"url"`
}

type page struct {
	Title     string       `json:"title"`
	Index     int          `json:"index"`
	Original  *imageSource `json:"original"`
	Thumbnail *imageSource `json:"thumbnail"`
	ImageInfo []imageInfo  `json:"imageinfo"`
}

// pageList accepts query.pages both as an id-keyed object (formatversion=1)
// and as an array (formatversion=2), keeping document order.
type pageList []page

func (p *pageList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		var pages []page
		if err := json.Unmarshal(b, &pages); err != nil {
			return err
		}
		*p = pages
	case '{':
		dec := json.NewDecoder(bytes.NewReader(b))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return err
			}
			var pg page
			if err := dec.Decode(&pg); err != nil {
				return err
			}
			*p = append(*p, pg)
		}
	}
	return nil
}

// byRank orders pages by their search index. Pages without an index keep
// their relative position after the ranked ones.
func (p pageList) byRank() pageList {
	ranked := make(pageList, len(p))
	copy(ranked, p)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Index, ranked[j].Index
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return ranked
}

type searchHit struct {
	Title string `json:"title"`
}

type queryResponse struct {
	Query struct {
		Search []searchHit `json:"search"`
		Pages  pageList    `json:"pages"`
	} `json:"query"`
}

// query calls the MediaWiki action API. Only transport errors are returned;
// a non-success status or an unexpected body yields an empty response so the
// caller can move on to its next strategy.
func (r *Resolver) query(ctx context.Context, params url.Values) (*queryResponse, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	u, err := url.Parse(r.api)
	if err != nil {
		return nil, err
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	empty := new(queryResponse)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debugf("Wiki API answered %d for %s", resp.StatusCode, params.Encode())
		return empty, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_API_BYTES))
	if err != nil {
		return nil, err
	}
	var data queryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		log.Debugf("Unexpected wiki API body for %s: %v", params.Encode(), err)
		return empty, nil
	}
	return &data, nil
}
