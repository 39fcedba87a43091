// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Options is the on-disk options file. Keys are camelCase so that a JSON
// options object can be used unchanged. Every mapping section replaces the
// corresponding default wholesale when present.
type Options struct {
	Types                   TypeMapping          `yaml:"types,omitempty"`
	PropMapping             PropertyMapping      `yaml:"propMapping,omitempty"`
	PropsDefinition         *PropsDefinition     `yaml:"propsDefinition,omitempty"`
	QidsLinkingAssociations *LinkingAssociations `yaml:"qidsLinkingAssociations,omitempty"`
	ResearcherClass         *string              `yaml:"researcherClass,omitempty"`
	References              [][]string           `yaml:"references,omitempty"`
	IsQueryOrcidAPIOn       *bool                `yaml:"isQueryOrcidApiOn,omitempty"`
	HasFlagAuthorsOnly      bool                 `yaml:"hasFlagAuthorsOnly,omitempty"`
	WikibaseConfig          *WikibaseConfig      `yaml:"wikibaseConfig,omitempty"`
}

// LoadOptions reads a YAML or JSON options file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("%w: parsing options file %s: %w", ErrInvalidConfig, path, err)
	}
	return o, nil
}

// Mapping returns the default mapping overridden by the sections present in o.
func (o Options) Mapping() Mapping {
	m := DefaultMapping()
	if o.Types != nil {
		m.Types = o.Types
	}
	if o.PropMapping != nil {
		m.Props = o.PropMapping
	}
	if o.PropsDefinition != nil {
		m.Definitions = *o.PropsDefinition
	}
	if o.QidsLinkingAssociations != nil {
		m.Linking = *o.QidsLinkingAssociations
	}
	if o.ResearcherClass != nil {
		m.ResearcherClass = *o.ResearcherClass
	}
	return m
}

// Compile returns the batch switches; the registry query defaults to on.
func (o Options) Compile() CompileConfig {
	query := true
	if o.IsQueryOrcidAPIOn != nil {
		query = *o.IsQueryOrcidAPIOn
	}
	return CompileConfig{
		QueryRegistry: query,
		AuthorsOnly:   o.HasFlagAuthorsOnly,
		References:    o.References,
	}
}

// Wikibase returns the configured endpoints with defaults filled in.
func (o Options) Wikibase() WikibaseConfig {
	var c WikibaseConfig
	if o.WikibaseConfig != nil {
		c = *o.WikibaseConfig
	}
	return c.WithDefaults()
}
