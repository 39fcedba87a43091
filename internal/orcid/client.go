// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orcid finds ORCID identifiers for citation authors through the
// ORCID public API.
package orcid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/csl-quickstatements/internal/httputil"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Person is the public name record of an ORCID holder.
type Person struct {
	ORCID  string
	Given  string
	Family string
}

// Named reports whether both name parts are public.
func (p Person) Named() bool {
	return p.Given != "" && p.Family != ""
}

// PersonCache persists person lookups across runs. internal/store provides
// the SQLite implementation.
type PersonCache interface {
	GetPerson(ctx context.Context, orcid string) (p Person, fetched time.Time, ok bool, err error)
	PutPerson(ctx context.Context, p Person, fetched time.Time) error
}

// Client is a rate-limited client for the ORCID public API. Failures never
// reach the caller: they are logged to Log and surface as empty results.
type Client struct {
	HTTP    *http.Client
	BaseURL string

	// Token is an optional read-public bearer token.
	Token     string
	UserAgent string
	Limiter   *rate.Limiter

	// Cache, when set, is consulted before fetching a person.
	Cache    PersonCache
	CacheTTL time.Duration

	Log io.Writer
	Now func() time.Time
}

// NewClient returns a client configured from cfg.
func NewClient(cfg types.RegistryConfig, cache PersonCache, log io.Writer) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		Cache:     cache,
		CacheTTL:  cfg.PersonCacheTTL,
		Log:       log,
	}
}

type searchResponse struct {
	NumFound int `json:"num-found"`
	Result   []struct {
		Identifier struct {
			Path string `json:"path"`
		} `json:"orcid-identifier"`
	} `json:"result"`
}

type nameValue struct {
	Value string `json:"value"`
}

type personResponse struct {
	Name *struct {
		GivenNames *nameValue `json:"given-names"`
		FamilyName *nameValue `json:"family-name"`
	} `json:"name"`
}

// Search runs an ORCID search query and returns the matching identifiers in
// result order.
func (c *Client) Search(ctx context.Context, query string) []string {
	var resp searchResponse
	if err := c.get(ctx, "search?q="+url.QueryEscape(query), &resp); err != nil {
		c.warnf("ORCID search %q failed: %v", query, err)
		return nil
	}
	var ids []string
	for _, r := range resp.Result {
		if id := strings.TrimSpace(r.Identifier.Path); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Person returns the public name of id. On failure the returned Person holds
// only the id.
func (c *Client) Person(ctx context.Context, id string) Person {
	if c.Cache != nil {
		p, fetched, ok, err := c.Cache.GetPerson(ctx, id)
		switch {
		case err != nil:
			c.warnf("reading person cache for %s: %v", id, err)
		case ok && c.now().Sub(fetched) < c.CacheTTL:
			return p
		}
	}

	var resp personResponse
	if err := c.get(ctx, url.PathEscape(id)+"/person", &resp); err != nil {
		c.warnf("ORCID person %s failed: %v", id, err)
		return Person{ORCID: id}
	}

	p := Person{ORCID: id}
	if resp.Name != nil {
		if resp.Name.GivenNames != nil {
			p.Given = strings.TrimSpace(resp.Name.GivenNames.Value)
		}
		if resp.Name.FamilyName != nil {
			p.Family = strings.TrimSpace(resp.Name.FamilyName.Value)
		}
	}

	if c.Cache != nil {
		if err := c.Cache.PutPerson(ctx, p, c.now()); err != nil {
			c.warnf("writing person cache for %s: %v", id, err)
		}
	}
	return p
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.DoJSON(client, req, out)
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) warnf(format string, args ...any) {
	if c.Log != nil {
		fmt.Fprintf(c.Log, "warning: "+format+"\n", args...)
	}
}
