// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orcid

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Registry is the part of the ORCID API the resolver uses. *Client
// implements it.
type Registry interface {
	Search(ctx context.Context, query string) []string
	Person(ctx context.Context, id string) Person
}

// Resolver fills in missing author ORCIDs.
type Resolver struct {
	Registry Registry

	// Concurrency caps how many records resolve at once. Zero means
	// types.DefaultRegistryConcurrency.
	Concurrency int
}

// Resolve returns a copy of records in which every author that could be
// identified carries an ORCID. The input records are not modified.
//
// For each record with an author lacking an ORCID, the people who claim the
// record's DOI are fetched and matched by name first. Authors still
// unresolved are searched by name; a name search only counts when it returns
// exactly one person.
func (r *Resolver) Resolve(ctx context.Context, records []types.Record) []types.Record {
	out := make([]types.Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = types.DefaultRegistryConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range out {
		rec := &out[i]
		g.Go(func() error {
			r.resolveRecord(ctx, rec)
			return nil
		})
	}
	g.Wait()
	return out
}

func (r *Resolver) resolveRecord(ctx context.Context, rec *types.Record) {
	var pending []int
	for i, a := range rec.Author {
		if strings.TrimSpace(a.ORCID) == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	var candidates []Person
	if doi := rec.DOI.String(); doi != "" {
		candidates = r.people(ctx, r.Registry.Search(ctx, "doi-self:"+doi))
	}

	var wg sync.WaitGroup
	for _, i := range pending {
		a := &rec.Author[i]
		if id := Match(*a, candidates); id != "" {
			a.ORCID = id
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if id := r.searchByName(ctx, *a); id != "" {
				a.ORCID = id
			}
		}()
	}
	wg.Wait()
}

// people fetches ids concurrently and keeps those with a public given and
// family name, in the order of ids.
func (r *Resolver) people(ctx context.Context, ids []string) []Person {
	fetched := make([]Person, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched[i] = r.Registry.Person(ctx, id)
		}()
	}
	wg.Wait()

	var named []Person
	for _, p := range fetched {
		if p.Named() {
			named = append(named, p)
		}
	}
	return named
}

// searchByName looks a up by full name, then by full or first given name.
func (r *Resolver) searchByName(ctx context.Context, a types.Author) string {
	family := strings.TrimSpace(a.Family)
	given := strings.TrimSpace(a.Given)
	if family == "" || given == "" {
		return ""
	}

	full := nameQuery(family, given)
	if ids := r.Registry.Search(ctx, full); len(ids) == 1 {
		return ids[0]
	}

	first := csl.FirstGiven(a)
	if first == "" || first == given {
		return ""
	}
	if ids := r.Registry.Search(ctx, full+" OR "+nameQuery(family, first)); len(ids) == 1 {
		return ids[0]
	}
	return ""
}
