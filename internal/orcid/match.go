// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orcid

import (
	"fmt"
	"strings"

	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Match picks the candidate that names author a. An exact match on family
// and full given name wins; failing that, a candidate whose given name equals
// the first token of the author's given name. Candidates are tried in order
// and the first hit wins. Match returns "" when nothing fits.
func Match(a types.Author, candidates []Person) string {
	family := strings.TrimSpace(a.Family)
	given := strings.TrimSpace(a.Given)
	if family == "" {
		return ""
	}
	for _, p := range candidates {
		if p.Named() && strings.EqualFold(p.Family, family) && strings.EqualFold(p.Given, given) {
			return p.ORCID
		}
	}
	first := csl.FirstGiven(a)
	if first == "" {
		return ""
	}
	for _, p := range candidates {
		if p.Named() && strings.EqualFold(p.Family, family) && strings.EqualFold(p.Given, first) {
			return p.ORCID
		}
	}
	return ""
}

// nameQuery builds the fielded search for a family and given name.
func nameQuery(family, given string) string {
	return fmt.Sprintf("(family-name:%s AND given-names:%s)", solrTerm(family), solrTerm(given))
}

var solrEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// solrTerm quotes values that contain whitespace so a multi-word name stays
// one term of its field.
func solrTerm(s string) string {
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	return `"` + solrEscaper.Replace(s) + `"`
}
