// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statement

import (
	"strconv"

	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/internal/wikibase"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// authorValue returns the value and qualifier columns for the author at the
// 1-based ordinal when populating property, or "" when that property gets no
// statement for this author.
//
// Without an ORCID the author is a plain name, which the author-role
// property never takes. With an ORCID the knowledge base does not know yet,
// the name carries the ORCID as a qualifier. With a known ORCID only the
// author-role property gets a statement, pointing at the researcher item.
func (s *Serializer) authorValue(a types.Author, ordinal int, property string) string {
	d := s.Mapping.Definitions
	name := csl.FormatName(a)
	ord := d.OrdinalNumber + "\t" + quote(strconv.Itoa(ordinal))

	id := wikibase.NormalizeORCID(a.ORCID)
	if id == "" {
		if name == "" || property == d.Author {
			return ""
		}
		return quote(name) + "\t" + ord
	}

	qid, ok := s.Cache.Item(wikibase.CategoryORCID, id)
	if !ok {
		if name == "" {
			return ""
		}
		return quote(name) + "\t" + d.OrcidID + "\t" + quote(id) + "\t" + ord
	}

	if property != d.Author {
		return ""
	}
	if name == "" {
		return qid + "\t" + ord
	}
	return qid + "\t" + d.StatedAs + "\t" + quote(name) + "\t" + ord
}

// authorValues returns one value per author that produces a statement for
// property. Ordinals are positions in the full author list.
func (s *Serializer) authorValues(rec *types.Record, property string) []string {
	var out []string
	for i, a := range rec.Author {
		if v := s.authorValue(a, i+1, property); v != "" {
			out = append(out, v)
		}
	}
	return out
}
