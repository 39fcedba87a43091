// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Remote service defaults.
const (
	DefaultInstance       = "https://www.wikidata.org"
	DefaultSparqlEndpoint = "https://query.wikidata.org/sparql"
	DefaultRegistryURL    = "https://pub.orcid.org/v3.0/"
	DefaultUserAgent      = "csl-quickstatements/0.1"

	DefaultRegistryConcurrency = 8
	DefaultRegistryRate        = 8.0
	DefaultPersonCacheTTL      = 30 * 24 * time.Hour
)

// HTTPConfig holds shared HTTP settings used by the remote clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. The SPARQL
	// endpoint policy asks for a contact address in it.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RegistryConfig holds settings for the ORCID researcher registry.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the public API root, e.g. "https://pub.orcid.org/v3.0/".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token is an optional read-public bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Concurrency caps how many records resolve at once (default 8).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Rate is the sustained request rate in requests per second (default 8).
	Rate float64 `json:"rate" yaml:"rate"`

	// PersonCache is the SQLite file caching person lookups across runs.
	// Empty disables the cache.
	PersonCache string `json:"person_cache,omitempty" yaml:"person_cache,omitempty"`

	// PersonCacheTTL is how long a cached person stays fresh (default 30 days).
	PersonCacheTTL time.Duration `json:"person_cache_ttl" yaml:"person_cache_ttl"`
}

// WithDefaults fills zero fields with their defaults.
func (c RegistryConfig) WithDefaults() RegistryConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultRegistryURL
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultRegistryConcurrency
	}
	if c.Rate <= 0 {
		c.Rate = DefaultRegistryRate
	}
	if c.PersonCacheTTL <= 0 {
		c.PersonCacheTTL = DefaultPersonCacheTTL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// WikibaseConfig addresses the target knowledge base.
type WikibaseConfig struct {
	HTTPConfig `yaml:",inline"`

	// Instance is the wiki root, e.g. "https://www.wikidata.org".
	Instance string `json:"instance" yaml:"instance"`

	// SparqlEndpoint is the query service URL.
	SparqlEndpoint string `json:"sparqlEndpoint" yaml:"sparqlEndpoint"`
}

// WithDefaults fills zero fields with the Wikidata endpoints.
func (c WikibaseConfig) WithDefaults() WikibaseConfig {
	if c.Instance == "" {
		c.Instance = DefaultInstance
	}
	if c.SparqlEndpoint == "" {
		c.SparqlEndpoint = DefaultSparqlEndpoint
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// CompileConfig holds the per-batch switches.
type CompileConfig struct {
	// QueryRegistry runs researcher resolution before the lookup query.
	QueryRegistry bool `json:"query_registry" yaml:"query_registry"`

	// AuthorsOnly emits researcher CREATE blocks instead of citation blocks.
	AuthorsOnly bool `json:"authors_only" yaml:"authors_only"`

	// References holds, per input record by position, the identifiers of the
	// works it cites.
	References [][]string `json:"references,omitempty" yaml:"references,omitempty"`
}
