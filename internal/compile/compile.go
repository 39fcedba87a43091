// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile turns a batch of CSL records into one QuickStatements
// script: it resolves missing author ORCIDs, looks every identifier up in
// the knowledge base with a single query, then serializes the records in
// input order.
package compile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/csl-quickstatements/internal/orcid"
	"github.com/pdiddy/csl-quickstatements/internal/statement"
	"github.com/pdiddy/csl-quickstatements/internal/wikibase"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Compiler runs the compile pipeline.
type Compiler struct {
	Mapping types.Mapping
	Config  types.CompileConfig

	// Registry resolves missing ORCIDs when Config.QueryRegistry is set.
	// Nil skips resolution.
	Registry    orcid.Registry
	Concurrency int

	// Lookup runs the knowledge-base query. Nil compiles against an empty
	// cache, so every record is created.
	Lookup wikibase.Selector

	// Instance is the Wikibase base URL the lookup runs against; empty
	// means Wikidata.
	Instance string

	// Log receives warnings; nil discards them.
	Log io.Writer

	// Now overrides the retrieval date for records without an accessed
	// date.
	Now func() time.Time
}

// Summary reports what a compile run did.
type Summary struct {
	Records  int
	Created  int
	Updated  int
	Skipped  int
	Authors  int
	Resolved int

	// Known counts the cache entries found per lookup category, keyed by
	// category name. Categories with no entries are left out.
	Known map[string]int

	// LookupError is set when the knowledge-base query failed and every
	// record was compiled as new.
	LookupError string
}

// LookupOK reports whether the knowledge-base query succeeded.
func (s Summary) LookupOK() bool { return s.LookupError == "" }

// Compile writes the script for records to w. The records are not modified.
// Only an invalid mapping, a cancelled context, or a write failure is
// returned as an error; remote failures are logged and degrade the output.
func (c *Compiler) Compile(ctx context.Context, records []types.Record, w io.Writer) (Summary, error) {
	if err := c.Mapping.Validate(); err != nil {
		return Summary{}, err
	}

	sum := Summary{Records: len(records)}
	batch := c.prepare(records)

	if c.Config.QueryRegistry && c.Registry != nil {
		resolver := &orcid.Resolver{Registry: c.Registry, Concurrency: c.Concurrency}
		enriched := resolver.Resolve(ctx, batch)
		sum.Resolved = countResolved(batch, enriched)
		batch = enriched
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	cache := wikibase.NewCache()
	if c.Lookup != nil {
		resolver := &wikibase.Resolver{Client: c.Lookup, Definitions: c.Mapping.Definitions, Instance: c.Instance, Log: c.Log}
		var err error
		cache, err = resolver.Resolve(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return sum, ctxErr
			}
			sum.LookupError = err.Error()
			c.warnf("knowledge-base lookup failed, compiling every record as new: %v", err)
		}
		sum.Known = known(cache)
	}

	s := &statement.Serializer{Mapping: c.Mapping, Cache: cache, Now: c.Now, Log: c.Log}

	if c.Config.AuthorsOnly {
		n, err := s.WriteResearchers(w, batch)
		sum.Authors = n
		return sum, err
	}

	for i := range batch {
		outcome, err := s.WriteRecord(w, &batch[i])
		if err != nil {
			return sum, err
		}
		switch outcome {
		case statement.Created:
			sum.Created++
		case statement.Updated:
			sum.Updated++
		default:
			sum.Skipped++
		}
	}
	return sum, nil
}

// Query returns the knowledge-base query Compile would run for records,
// before any ORCID resolution.
func (c *Compiler) Query(records []types.Record) string {
	return wikibase.BuildQuery(c.prepare(records), c.Mapping.Definitions, c.Instance)
}

func known(cache *wikibase.Cache) map[string]int {
	var counts map[string]int
	for _, cat := range wikibase.Categories {
		n := cache.Len(cat)
		if n == 0 {
			continue
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		counts[cat.String()] = n
	}
	return counts
}

// prepare copies records and attaches the configured reference lists by
// position.
func (c *Compiler) prepare(records []types.Record) []types.Record {
	batch := make([]types.Record, len(records))
	for i := range records {
		batch[i] = records[i].Clone()
		if i < len(c.Config.References) {
			for _, ref := range c.Config.References[i] {
				if ref = strings.TrimSpace(ref); ref != "" {
					batch[i].References = append(batch[i].References, ref)
				}
			}
		}
	}
	if extra := len(c.Config.References) - len(records); extra > 0 {
		c.warnf("%d reference lists have no matching record", extra)
	}
	return batch
}

func countResolved(before, after []types.Record) int {
	n := 0
	for i := range before {
		for j, a := range before[i].Author {
			if strings.TrimSpace(a.ORCID) == "" && after[i].Author[j].ORCID != "" {
				n++
			}
		}
	}
	return n
}

func (c *Compiler) warnf(format string, args ...any) {
	if c.Log != nil {
		fmt.Fprintf(c.Log, "warning: "+format+"\n", args...)
	}
}
