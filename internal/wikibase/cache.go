// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikibase

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Cache holds the resolved identifiers of one run, keyed by category. It is
// read-only once Resolve returns. A nil *Cache behaves as an empty cache.
type Cache struct {
	entries map[Category]map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Category]map[string]string)}
}

// Put records that id of category c resolves to value. Presence categories
// take the composite key built by StatementKey. The first value stored for a
// key wins.
func (c *Cache) Put(cat Category, key, value string) {
	if key == "" || value == "" {
		return
	}
	m, ok := c.entries[cat]
	if !ok {
		m = make(map[string]string)
		c.entries[cat] = m
	}
	if _, dup := m[key]; !dup {
		m[key] = value
	}
}

// Item returns the item id that id of category cat resolves to.
func (c *Cache) Item(cat Category, id string) (string, bool) {
	if c == nil {
		return "", false
	}
	id = cat.Normalize(id)
	if id == "" {
		return "", false
	}
	v, ok := c.entries[cat][id]
	return v, ok
}

// Asserted reports whether the statement linking subject to the entity with
// identifier id already exists. cat is a presence category.
func (c *Cache) Asserted(cat Category, id, subject string) bool {
	if c == nil {
		return false
	}
	id = cat.Normalize(id)
	if id == "" || subject == "" {
		return false
	}
	_, ok := c.entries[cat][StatementKey(id, subject)]
	return ok
}

// Len returns the number of keys stored for cat.
func (c *Cache) Len(cat Category) int {
	if c == nil {
		return 0
	}
	return len(c.entries[cat])
}

// Selector runs a SPARQL SELECT. *Client implements it.
type Selector interface {
	Select(ctx context.Context, query string) ([]map[string]string, error)
}

// Resolver fills a Cache from a batch of records with one query.
type Resolver struct {
	Client      Selector
	Definitions types.PropsDefinition

	// Instance is the Wikibase base URL; empty means Wikidata.
	Instance string

	// Log receives warnings about dropped rows; nil discards them.
	Log io.Writer
}

// Resolve queries the endpoint for every identifier in records. It always
// returns a usable cache: when the query fails the cache is empty and the
// error says why, so callers can log it and fall back to creating every
// item.
func (r *Resolver) Resolve(ctx context.Context, records []types.Record) (*Cache, error) {
	cache := NewCache()
	query := BuildQuery(records, r.Definitions, r.Instance)
	if query == "" {
		return cache, nil
	}

	rows, err := r.Client.Select(ctx, query)
	if err != nil {
		return cache, err
	}

	for _, row := range rows {
		cat, ok := ParseCategory(row["cache"])
		if !ok {
			r.warnf("dropping SPARQL row with unknown cache tag %q", row["cache"])
			continue
		}
		key, value := row["key"], row["value"]
		if cat.Presence() {
			// Presence keys arrive as "<identifier>_<subject>".
			cache.Put(cat, key, value)
			continue
		}
		cache.Put(cat, cat.Normalize(key), value)
	}
	return cache, nil
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Log != nil {
		fmt.Fprintf(r.Log, "warning: "+format+"\n", args...)
	}
}
