/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package status

import (
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in    string
		state State
		label string
	}{
		{"All Systems Operational", OK, "Operational"},
		{"Major systems degraded", DEGRADED, "Degraded"},
		{"Partial outage on login", PARTIAL, "Partial Outage"},
		{"Major Outage", MAJOR, "Major Outage"},
		{"Service unavailable", MAJOR, "Major Outage"},
		{"Servers are DOWN", MAJOR, "Major Outage"},
		{"Scheduled Maintenance", DEGRADED, "Maintenance"},
		{"  Something else  ", UNKNOWN, "Something else"},
		{"", UNKNOWN, "Unknown"},
	}
	for _, c := range cases {
		got := Classify(c.in)
		if got.State != c.state || got.Label != c.label {
			t.Errorf("Classify(%q) = %+v, want {%s %s}", c.in, got, c.state, c.label)
		}
	}
}

func TestClassifyResultError(t *testing.T) {
	got := ClassifyResult(Result{Error: true, Message: SCRAPE_FAILURE, OverallText: "Operational"})
	if got.State != UNKNOWN || got.Label != "Unknown" {
		t.Errorf("errors must classify as unknown, got %+v", got)
	}
}
