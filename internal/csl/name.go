// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"strings"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// FormatName renders an author in display order: given, particles, family,
// suffix. A literal name is returned as is.
func FormatName(a types.Author) string {
	if s := strings.TrimSpace(a.Literal); s != "" {
		return s
	}
	var parts []string
	for _, p := range []string{a.Given, a.DroppingParticle, a.NonDroppingParticle, a.Family, a.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FirstGiven returns the first token of the given name ("José L." → "José").
func FirstGiven(a types.Author) string {
	fields := strings.Fields(a.Given)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
