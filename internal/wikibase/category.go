// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikibase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Category names one kind of lookup the combined query resolves. The set is
// closed: rows tagged with any other name are dropped.
type Category int

// Lookup categories, in the order their fragments appear in the query.
const (
	CategoryDOI Category = iota
	CategoryISSN
	CategoryOrcidStatements
	CategoryReferenceStatements
	CategoryReferences
	CategoryORCID
	CategoryLanguage
)

// Categories lists every category in query order.
var Categories = []Category{
	CategoryDOI,
	CategoryISSN,
	CategoryOrcidStatements,
	CategoryReferenceStatements,
	CategoryReferences,
	CategoryORCID,
	CategoryLanguage,
}

var categoryNames = map[Category]string{
	CategoryDOI:                 "doi",
	CategoryISSN:                "issn",
	CategoryOrcidStatements:     "orcidStatements",
	CategoryReferenceStatements: "referenceStatements",
	CategoryReferences:          "references",
	CategoryORCID:               "orcid",
	CategoryLanguage:            "language",
}

// String returns the tag bound to ?cache in the query.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps a ?cache tag back to its category.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// Presence reports whether the category answers "does this statement already
// exist" rather than "which item has this identifier". Presence keys are
// composite: identifier + "_" + subject item id.
func (c Category) Presence() bool {
	return c == CategoryOrcidStatements || c == CategoryReferenceStatements
}

var (
	doiPrefix   = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)
	orcidPrefix = regexp.MustCompile(`(?i)^https?://(www\.)?orcid\.org/`)
)

// NormalizeDOI strips a resolver URL prefix and upper-cases the DOI. DOIs are
// case-insensitive; Wikidata stores them upper-cased.
func NormalizeDOI(doi string) string {
	return strings.ToUpper(doiPrefix.ReplaceAllString(strings.TrimSpace(doi), ""))
}

// NormalizeORCID strips the https://orcid.org/ prefix and upper-cases the
// check digit.
func NormalizeORCID(id string) string {
	return strings.ToUpper(orcidPrefix.ReplaceAllString(strings.TrimSpace(id), ""))
}

// NormalizeISSN upper-cases the ISSN check character.
func NormalizeISSN(issn string) string {
	return strings.ToUpper(strings.TrimSpace(issn))
}

// NormalizeLanguage reduces a language tag to its lower-cased primary subtag
// ("en-US" → "en").
func NormalizeLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// NormalizeReference normalizes a cited work identifier, which is a DOI or an
// ISBN.
func NormalizeReference(id string) string {
	return NormalizeDOI(id)
}

// Normalize brings an identifier of category c into the form used as a cache
// key. For presence categories id is the identifier half of the key.
func (c Category) Normalize(id string) string {
	switch c {
	case CategoryDOI:
		return NormalizeDOI(id)
	case CategoryISSN:
		return NormalizeISSN(id)
	case CategoryORCID, CategoryOrcidStatements:
		return NormalizeORCID(id)
	case CategoryLanguage:
		return NormalizeLanguage(id)
	case CategoryReferences, CategoryReferenceStatements:
		return NormalizeReference(id)
	default:
		return strings.TrimSpace(id)
	}
}

// StatementKey builds the presence key for an identifier asserted on subject.
func StatementKey(id, subject string) string {
	return id + "_" + subject
}

// collect returns the distinct normalized identifiers of category c found in
// records, in first-seen order. Presence categories collect the DOIs of the
// records that could produce an incremental statement of that kind.
func (c Category) collect(records []types.Record) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for i := range records {
		rec := &records[i]
		switch c {
		case CategoryDOI:
			add(NormalizeDOI(rec.DOI.String()))
		case CategoryISSN:
			add(NormalizeISSN(rec.ISSN.String()))
		case CategoryLanguage:
			add(NormalizeLanguage(rec.Language.String()))
		case CategoryORCID:
			for _, a := range rec.Author {
				add(NormalizeORCID(a.ORCID))
			}
		case CategoryReferences:
			for _, ref := range rec.References {
				add(NormalizeReference(ref))
			}
		case CategoryOrcidStatements:
			if hasORCID(rec) {
				add(NormalizeDOI(rec.DOI.String()))
			}
		case CategoryReferenceStatements:
			if len(rec.References) > 0 {
				add(NormalizeDOI(rec.DOI.String()))
			}
		}
	}
	return ids
}

func hasORCID(rec *types.Record) bool {
	for _, a := range rec.Author {
		if NormalizeORCID(a.ORCID) != "" {
			return true
		}
	}
	return false
}
