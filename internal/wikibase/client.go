// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikibase resolves citation identifiers against a Wikibase SPARQL
// endpoint. One batched query per run fills a Cache that the statement
// serializer consults to decide between creating and updating items.
package wikibase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/csl-quickstatements/internal/httputil"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Client runs SELECT queries against a SPARQL endpoint.
type Client struct {
	HTTP   *http.Client
	Config types.WikibaseConfig
}

// NewClient returns a client for cfg with defaults applied.
func NewClient(cfg types.WikibaseConfig) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

// Binding is one variable binding in a SPARQL JSON result row.
type Binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type selectResponse struct {
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

// Select posts query and returns each result row as variable → value. Entity
// URIs are simplified to their item or property id.
func (c *Client) Select(ctx context.Context, query string) ([]map[string]string, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.SparqlEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating SPARQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.Config.UserAgent)

	var resp selectResponse
	if err := httputil.DoJSON(c.HTTP, req, &resp); err != nil {
		return nil, fmt.Errorf("SPARQL query: %w", err)
	}

	rows := make([]map[string]string, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		row := make(map[string]string, len(b))
		for name, v := range b {
			row[name] = simplify(v, c.Config.Instance)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// simplify reduces an entity URI such as http://www.wikidata.org/entity/Q42
// to "Q42", trying the configured instance's entity namespace first. Other
// values are returned unchanged.
func simplify(b Binding, instance string) string {
	if b.Type != "uri" {
		return b.Value
	}
	if base := strings.TrimRight(strings.TrimSpace(instance), "/"); base != "" {
		if id, ok := strings.CutPrefix(b.Value, base+"/entity/"); ok {
			return id
		}
	}
	if i := strings.LastIndex(b.Value, "/entity/"); i >= 0 {
		return b.Value[i+len("/entity/"):]
	}
	return b.Value
}
