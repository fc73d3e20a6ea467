/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package status

import (
	"regexp"
	"strings"
)

type State string

const (
	UNKNOWN  State = "unknown"
	OK       State = "ok"
	DEGRADED State = "degraded"
	PARTIAL  State = "partial"
	MAJOR    State = "major"
)

type Classification struct {
	State State  `json:"state"`
	Label string `json:"label"`
}

type rule struct {
	pattern *regexp.Regexp
	state   State
	label   string
}

// First match wins. Maintenance maps to the degraded state under its own label.
var rules = []rule{
	{regexp.MustCompile(`operational|all systems operational`), OK, "Operational"},
	{regexp.MustCompile(`degraded`), DEGRADED, "Degraded"},
	{regexp.MustCompile(`partial`), PARTIAL, "Partial Outage"},
	{regexp.MustCompile(`major|outage|unavailable|down`), MAJOR, "Major Outage"},
	{regexp.MustCompile(`maintenance`), DEGRADED, "Maintenance"},
}

// Classify maps a scraped status text to a display state.
func Classify(text string) Classification {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.pattern.MatchString(lower) {
			return Classification{State: r.state, Label: r.label}
		}
	}
	if text == "" {
		return Classification{State: UNKNOWN, Label: "Unknown"}
	}
	return Classification{State: UNKNOWN, Label: text}
}

// ClassifyResult treats failed scrapes as unknown.
func ClassifyResult(r Result) Classification {
	if r.Error {
		return Classification{State: UNKNOWN, Label: "Unknown"}
	}
	return Classify(r.OverallText)
}
