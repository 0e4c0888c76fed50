// Package parser extracts #tags and searchable text from the text fields of
// board items.
package parser

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Result holds the output of parsing a set of text fields.
type Result struct {
	Body string
	Tags []string
}

// Parse joins the non-empty fields into one searchable body and collects the
// distinct #tags found in them, in order of first appearance.
func Parse(fields []string) *Result {
	var parts []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	body := strings.Join(parts, "\n")
	return &Result{Body: body, Tags: extractTags(body)}
}

// extractTags collects inline #tags.
func extractTags(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		t := m[1]
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
