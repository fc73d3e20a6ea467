/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package assistant

import (
	"strings"
	"unicode/utf8"

	"github.com/Zuplu/sc-overlay/internal/utils/valid"
)

const (
	MAX_QUESTION_CHARS = 2000
	IMAGE_MARKER       = "IMAGE:"
)

// Preamble is the fixed instruction block sent ahead of every question. The
// lookup directive is only included when the search tool is attached.
func Preamble(search bool) string {
	parts := []string{
		"You are an expert assistant focused on Star Citizen.",
		"CONCISENESS: Keep answers short and to-the-point.",
		"SCOPE: Only answer Star Citizen questions. If out-of-scope, say so.",
	}
	if search {
		parts = append(parts, "LOOKUP: Use the Google Search tool when the question involves time-sensitive, numeric, or verifiable facts (e.g., ship prices, locations, spawn availability, patch/PTS details, stats, schedules) or when uncertain. Prefer grounded answers with citations when possible.")
	}
	parts = append(parts,
		"EVIDENCE: Avoid fabricating specifics; state uncertainty if needed.",
		"IMAGES: Only when a picture genuinely helps, end the answer with exactly one final line of the form '"+IMAGE_MARKER+" <direct image URL>'. Only use URLs you actually found; never invent one. Otherwise omit that line.",
	)
	return strings.Join(parts, " ")
}

// Truncate caps s at max characters.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func Prompt(question string, search bool) string {
	return Preamble(search) +
		"\n\nUser question: " + Truncate(question, MAX_QUESTION_CHARS) +
		"\n\nRespond concisely with only the minimally necessary information."
}

// SplitImageMarker removes a trailing image marker line from an answer and
// returns the linked URL. Invalid URLs leave the text untouched.
func SplitImageMarker(text string) (string, string) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	body, last := "", trimmed
	if i := strings.LastIndex(trimmed, "\n"); i >= 0 {
		body, last = trimmed[:i], trimmed[i+1:]
	}
	last = strings.TrimSpace(last)
	if len(last) < len(IMAGE_MARKER) || !strings.EqualFold(last[:len(IMAGE_MARKER)], IMAGE_MARKER) {
		return text, ""
	}
	u := strings.Trim(strings.TrimSpace(last[len(IMAGE_MARKER):]), "<>")
	if !valid.IsHTTPURL(u) {
		return text, ""
	}
	return strings.TrimRight(body, " \t\r\n"), u
}
