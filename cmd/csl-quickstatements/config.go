// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/csl-quickstatements/internal/secrets"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

const defaultTimeout = 30 * time.Second

func setDefaults() {
	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("registry.concurrency", types.DefaultRegistryConcurrency)
	viper.SetDefault("registry.rate", types.DefaultRegistryRate)
	viper.SetDefault("registry.person_cache_ttl", types.DefaultPersonCacheTTL)
	if dir, err := os.UserCacheDir(); err == nil {
		viper.SetDefault("registry.person_cache", filepath.Join(dir, "csl-quickstatements", "persons.db"))
	}
}

// addCompileFlags registers the flags shared by compile, authors and query.
func addCompileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("options", "", "options file (YAML or JSON) with types, propMapping, propsDefinition, ...")
	f.StringP("output", "o", "", "write the script to this file instead of stdout")
	f.Bool("no-registry", false, "do not look up missing ORCIDs in the ORCID registry")
	f.String("references", "", "YAML or JSON file listing, per input record, the DOIs or ISBNs it cites")
	f.String("sparql-endpoint", "", "SPARQL endpoint of the target Wikibase")
	f.String("instance", "", "root URL of the target Wikibase")
	f.String("registry-url", "", "ORCID public API base URL")
	f.Int("concurrency", types.DefaultRegistryConcurrency, "records resolved against the ORCID registry at once")
	f.Float64("rate", types.DefaultRegistryRate, "ORCID registry requests per second")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.String("person-cache", "", "SQLite file caching ORCID person lookups (empty string in config disables)")
}

// bindCompileFlags binds cmd's flags to their config keys. It runs when cmd
// executes, since several commands share flag names.
func bindCompileFlags(cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"options":                  "options",
		"output":                   "output",
		"no_registry":              "no-registry",
		"references":               "references",
		"wikibase.sparql_endpoint": "sparql-endpoint",
		"wikibase.instance":        "instance",
		"registry.base_url":        "registry-url",
		"registry.concurrency":     "concurrency",
		"registry.rate":            "rate",
		"timeout":                  "timeout",
		"registry.person_cache":    "person-cache",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// runConfig is the resolved configuration of one compile run.
type runConfig struct {
	mapping  types.Mapping
	compile  types.CompileConfig
	wikibase types.WikibaseConfig
	registry types.RegistryConfig
	output   string
}

// loadRunConfig merges the options file with config, environment and
// flags, which take precedence over it.
func loadRunConfig() (runConfig, error) {
	var opts types.Options
	if path := viper.GetString("options"); path != "" {
		o, err := types.LoadOptions(path)
		if err != nil {
			return runConfig{}, err
		}
		opts = o
	}

	rc := runConfig{
		mapping:  opts.Mapping(),
		compile:  opts.Compile(),
		wikibase: opts.Wikibase(),
		output:   viper.GetString("output"),
	}

	if viper.GetBool("no_registry") {
		rc.compile.QueryRegistry = false
	}
	if path := viper.GetString("references"); path != "" {
		refs, err := loadReferences(path)
		if err != nil {
			return runConfig{}, err
		}
		rc.compile.References = refs
	}

	userAgent := secrets.UserAgent(types.DefaultUserAgent, secretDefault(secrets.ContactEmail, viper.GetString("contact_email")))
	timeout := viper.GetDuration("timeout")

	if v := viper.GetString("wikibase.sparql_endpoint"); v != "" {
		rc.wikibase.SparqlEndpoint = v
	}
	if v := viper.GetString("wikibase.instance"); v != "" {
		rc.wikibase.Instance = v
	}
	rc.wikibase.Timeout = timeout
	rc.wikibase.UserAgent = userAgent
	rc.wikibase = rc.wikibase.WithDefaults()

	rc.registry = types.RegistryConfig{
		HTTPConfig:     types.HTTPConfig{Timeout: timeout, UserAgent: userAgent},
		BaseURL:        viper.GetString("registry.base_url"),
		Token:          secretDefault(secrets.ORCIDToken, viper.GetString("registry.token")),
		Concurrency:    viper.GetInt("registry.concurrency"),
		Rate:           viper.GetFloat64("registry.rate"),
		PersonCache:    viper.GetString("registry.person_cache"),
		PersonCacheTTL: viper.GetDuration("registry.person_cache_ttl"),
	}.WithDefaults()

	return rc, nil
}

// loadReferences reads a list of per-record reference lists.
func loadReferences(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading references file: %w", err)
	}
	var refs [][]string
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("%w: parsing references file %s: %w", types.ErrInvalidConfig, path, err)
	}
	return refs, nil
}
