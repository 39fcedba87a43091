// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statement

import (
	"strings"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// pmcidGraphType marks the _graph entry a PubMed-derived record uses to carry
// its PubMed Central id.
const pmcidGraphType = "@pubmed/pmcid"

// Provenance returns the reference columns appended to every statement of
// rec, including the leading tab. Records whose source is not a recognized
// origin get an empty block.
func (s *Serializer) Provenance(rec *types.Record) string {
	origin, ok := s.Mapping.Linking.Origin(rec.Source.String())
	if !ok {
		return ""
	}
	d := s.Mapping.Definitions

	retrieved := encodeDay(s.now())
	if !rec.Accessed.IsZero() {
		retrieved = EncodeDate(rec.Accessed)
	}

	var b strings.Builder
	b.WriteString("\t" + types.SourceProperty(d.StatedIn) + "\t" + origin)
	b.WriteString("\t" + types.SourceProperty(d.Retrieved) + "\t" + retrieved)
	for _, g := range rec.Graph {
		if g.Type != pmcidGraphType {
			continue
		}
		for _, id := range g.Values() {
			b.WriteString("\t" + types.SourceProperty(d.PMCID) + "\t" + quote(id))
		}
	}
	return b.String()
}
