// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"regexp"
	"strings"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// isoPrefix matches raw dates that are already ISO 8601, optionally with a
// time part: 2019, 2019-09, 2019-9-24, 2019-09-24T10:00:00Z.
var isoPrefix = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2})(?:-(\d{1,2}))?)?(?:[T ].*)?$`)

// FormatDate renders a CSL date as YYYY, YYYY-MM or YYYY-MM-DD, padding each
// part with zeros. Date-parts stop at the first empty, zero or non-numeric
// part. Dates without date-parts use their raw (or literal) text, reduced to
// its ISO part. FormatDate returns "" when no year can be read.
func FormatDate(d *types.Date) string {
	if d.IsZero() {
		return ""
	}
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		parts := d.DateParts[0]
		if len(parts) > 3 {
			parts = parts[:3]
		}
		var out []string
		for i, p := range parts {
			s := p.String()
			if !datePart(s) {
				break
			}
			width := 2
			if i == 0 {
				width = 4
			}
			out = append(out, padZero(s, width))
		}
		return strings.Join(out, "-")
	}

	raw := strings.TrimSpace(d.Raw)
	if raw == "" {
		raw = strings.TrimSpace(d.Literal)
	}
	m := isoPrefix.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	out := []string{m[1]}
	for _, p := range m[2:] {
		if !datePart(p) {
			break
		}
		out = append(out, padZero(p, 2))
	}
	return strings.Join(out, "-")
}

// datePart reports whether s is a non-zero decimal number.
func datePart(s string) bool {
	if s == "" || strings.Trim(s, "0") == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func padZero(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
