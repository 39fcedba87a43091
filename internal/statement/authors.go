// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/internal/wikibase"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// researcherDescription is the English description given to created
// researcher items.
const researcherDescription = "Researcher"

// WriteResearchers writes one CREATE block per distinct ORCID in records that
// has no researcher item yet, and returns how many blocks it wrote. Authors
// without an ORCID are ignored; the first occurrence of an ORCID supplies the
// label.
func (s *Serializer) WriteResearchers(w io.Writer, records []types.Record) (int, error) {
	d := s.Mapping.Definitions
	seen := make(map[string]bool)
	var b strings.Builder
	n := 0

	for i := range records {
		for _, a := range records[i].Author {
			id := wikibase.NormalizeORCID(a.ORCID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			if _, known := s.Cache.Item(wikibase.CategoryORCID, id); known {
				continue
			}

			b.WriteString("\tCREATE\n\n")
			if name := csl.FormatName(a); name != "" {
				fmt.Fprintf(&b, "\tLAST\tLen\t%s\n", quote(name))
			}
			fmt.Fprintf(&b, "\tLAST\tDen\t%s\n", quote(researcherDescription))
			if s.Mapping.ResearcherClass != "" {
				fmt.Fprintf(&b, "\tLAST\t%s\t%s\n", d.InstanceOf, s.Mapping.ResearcherClass)
			}
			fmt.Fprintf(&b, "\tLAST\t%s\t%s\n\n", d.OrcidID, quote(id))
			n++
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return n, fmt.Errorf("writing researchers: %w", err)
	}
	return n, nil
}
