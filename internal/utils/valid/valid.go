/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package valid

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator/v11"
)

var (
	httpScheme     = regexp.MustCompile(`(?i)^https?://`)
	imageExtension = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)(\?.*)?$`)
)

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	if !httpScheme.MatchString(s) || !govalidator.IsRequestURL(s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Hostname() != ""
}

// IsOnHost reports whether s is an http(s) URL whose host is exactly host.
func IsOnHost(s, host string) bool {
	if host == "" || !IsHTTPURL(s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), host)
}

// HasImageExtension matches jpg, jpeg, png and webp paths, optionally followed by a query string.
func HasImageExtension(s string) bool {
	return imageExtension.MatchString(s)
}

func IsHostname(s string) bool {
	return s != "" && (govalidator.IsDNSName(s) || govalidator.IsIP(s))
}
