/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package status

import (
	"regexp"
	"strings"
)

// Strategy pulls a candidate status string out of raw HTML.
type Strategy struct {
	Name    string
	Attempt func(html string) (string, bool)
}

var (
	spanPattern  = regexp.MustCompile(`(?i)<span[^>]*class=["'][^"']*status[^"']*["'][^>]*>([^<]+)</span>`)
	metaPattern  = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']+)["'][^>]*>`)
	titlePattern = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
)

func firstGroup(re *regexp.Regexp) func(string) (string, bool) {
	return func(html string) (string, bool) {
		m := re.FindStringSubmatch(html)
		if len(m) < 2 {
			return "", false
		}
		text := strings.TrimSpace(m[1])
		return text, text != ""
	}
}

// Strategies in priority order.
var Strategies = []Strategy{
	{Name: "status-span", Attempt: firstGroup(spanPattern)},
	{Name: "meta-description", Attempt: firstGroup(metaPattern)},
	{Name: "title", Attempt: firstGroup(titlePattern)},
}

// Extract runs the strategies in order and returns the first non-empty text,
// or "" when none matched.
func Extract(html string) string {
	for _, s := range Strategies {
		if text, ok := s.Attempt(html); ok {
			return text
		}
	}
	return ""
}
