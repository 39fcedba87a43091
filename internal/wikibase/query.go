// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikibase

import (
	"fmt"
	"strings"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// BuildQuery returns the single SPARQL SELECT that resolves every category
// referenced by records. Each category contributes one UNION branch binding
// ?key and ?value and tagging its rows with ?cache. Categories with no
// identifiers are left out; BuildQuery returns "" when none remain.
//
// The wd: and wdt: prefixes are predeclared by the Wikidata endpoint. For any
// other instance BuildQuery declares them against that instance's base URL.
func BuildQuery(records []types.Record, defs types.PropsDefinition, instance string) string {
	var branches []string
	for _, c := range Categories {
		ids := c.collect(records)
		if len(ids) == 0 {
			continue
		}
		branches = append(branches, fmt.Sprintf("{ %s BIND(%s AS ?cache) }", fragment(c, ids, defs), literal(c.String())))
	}
	if len(branches) == 0 {
		return ""
	}
	return prefixes(instance) + "SELECT ?key ?value ?cache WHERE { " + strings.Join(branches, " UNION ") + " }"
}

func prefixes(instance string) string {
	base := strings.TrimRight(strings.TrimSpace(instance), "/")
	if base == "" || base == types.DefaultInstance {
		return ""
	}
	return fmt.Sprintf("PREFIX wd: <%s/entity/> PREFIX wdt: <%s/prop/direct/> ", base, base)
}

// fragment returns the graph pattern for one category. Identifier keys are
// compared upper-cased since the collected identifiers are normalized that
// way and the stored values may not be.
func fragment(c Category, ids []string, d types.PropsDefinition) string {
	values := valuesList(ids)
	switch c {
	case CategoryDOI:
		return fmt.Sprintf(`VALUES ?key { %s } . ?value wdt:%s ?doi . FILTER (ucase(str(?doi)) = ?key) .`,
			values, d.DOI)
	case CategoryISSN:
		return fmt.Sprintf(`VALUES ?key { %s } . ?value wdt:%s ?key .`,
			values, d.ISSN)
	case CategoryOrcidStatements:
		return fmt.Sprintf(`VALUES ?doiKey { %s } . ?item wdt:%s ?doi . FILTER (ucase(str(?doi)) = ?doiKey) . `+
			`?item wdt:%s ?value . ?value wdt:%s ?orcid . `+
			`BIND(concat(ucase(str(?orcid)), "_", strafter(str(?item), str(wd:))) AS ?key) .`,
			values, d.DOI, d.Author, d.OrcidID)
	case CategoryReferenceStatements:
		return fmt.Sprintf(`VALUES ?doiKey { %s } . ?item wdt:%s ?doi . FILTER (ucase(str(?doi)) = ?doiKey) . `+
			`?item wdt:%s ?value . ?value wdt:%s|wdt:%s ?identifier . `+
			`BIND(concat(ucase(str(?identifier)), "_", strafter(str(?item), str(wd:))) AS ?key) .`,
			values, d.DOI, d.CitesWork, d.DOI, d.ISBN)
	case CategoryReferences:
		return fmt.Sprintf(`VALUES ?key { %s } . ?value wdt:%s|wdt:%s ?identifier . FILTER (ucase(str(?identifier)) = ?key) .`,
			values, d.DOI, d.ISBN)
	case CategoryORCID:
		return fmt.Sprintf(`VALUES ?key { %s } . ?value wdt:%s ?key .`,
			values, d.OrcidID)
	case CategoryLanguage:
		return fmt.Sprintf(`VALUES ?key { %s } . ?value wdt:%s ?key .`,
			values, d.IsoLanguageCodeTwoLetter)
	}
	return ""
}

func valuesList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = literal(id)
	}
	return strings.Join(quoted, " ")
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// literal renders s as a SPARQL string literal.
func literal(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
