// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.yaml.in/yaml/v3"
)

// ErrInvalidConfig marks a mapping or options problem detected before any
// output is produced.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	propertyPattern = regexp.MustCompile(`^P\d+$`)
	itemPattern     = regexp.MustCompile(`^Q\d+$`)
)

// PropertyField pairs an output property id with the CSL field that feeds it.
type PropertyField struct {
	Property string `json:"property" yaml:"property"`
	Field    string `json:"field" yaml:"field"`
}

// PropertyMapping is the ordered property → CSL field table. Order is output
// order. Several properties may read the same field (P50 and P2093 both read
// "author").
type PropertyMapping []PropertyField

// UnmarshalYAML accepts either an object ({"P50": "author", ...}, key order
// preserved) or a list of {property, field} entries. Since JSON is YAML this
// also reads the object form of a JSON options file.
func (m *PropertyMapping) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(PropertyMapping, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: field for property %q must be a string", v.Line, k.Value)
			}
			out = append(out, PropertyField{Property: k.Value, Field: v.Value})
		}
		*m = out
		return nil
	case yaml.SequenceNode:
		var list []PropertyField
		if err := node.Decode(&list); err != nil {
			return err
		}
		*m = list
		return nil
	default:
		return fmt.Errorf("line %d: property mapping must be an object or a list", node.Line)
	}
}

// TypeMapping maps a CSL record type to the item id used for "instance of".
type TypeMapping map[string]string

// Lookup returns the item id for a CSL type.
func (m TypeMapping) Lookup(cslType string) (string, bool) {
	qid, ok := m[cslType]
	return qid, ok && qid != ""
}

// PropsDefinition names the property ids that play a fixed role in the
// generated statements.
type PropsDefinition struct {
	Author                   string `json:"author" yaml:"author"`
	ISSN                     string `json:"issn" yaml:"issn"`
	OrcidID                  string `json:"orcidId" yaml:"orcidId"`
	IsoLanguageCodeTwoLetter string `json:"isoLanguageCodeTwoLetter" yaml:"isoLanguageCodeTwoLetter"`
	OrdinalNumber            string `json:"ordinalNumber" yaml:"ordinalNumber"`
	StatedAs                 string `json:"statedAs" yaml:"statedAs"`
	StatedIn                 string `json:"statedIn" yaml:"statedIn"`
	InstanceOf               string `json:"instanceOf" yaml:"instanceOf"`
	PMCID                    string `json:"pmcId" yaml:"pmcId"`
	Retrieved                string `json:"retrieved" yaml:"retrieved"`
	DOI                      string `json:"doi" yaml:"doi"`
	CitesWork                string `json:"citesWork" yaml:"citesWork"`
	ISBN                     string `json:"isbn" yaml:"isbn"`
}

func (d PropsDefinition) roles() []struct{ name, id string } {
	return []struct{ name, id string }{
		{"author", d.Author},
		{"issn", d.ISSN},
		{"orcidId", d.OrcidID},
		{"isoLanguageCodeTwoLetter", d.IsoLanguageCodeTwoLetter},
		{"ordinalNumber", d.OrdinalNumber},
		{"statedAs", d.StatedAs},
		{"statedIn", d.StatedIn},
		{"instanceOf", d.InstanceOf},
		{"pmcId", d.PMCID},
		{"retrieved", d.Retrieved},
		{"doi", d.DOI},
		{"citesWork", d.CitesWork},
		{"isbn", d.ISBN},
	}
}

// SourceProperty returns the reference-column form of a property id
// ("P248" → "S248").
func SourceProperty(property string) string {
	return "S" + strings.TrimPrefix(property, "P")
}

// Recognized origin names carried in a record's source field.
const (
	OriginCrossref = "Crossref"
	OriginPubMed   = "PubMed"
)

// LinkingAssociations holds the item ids of the services a record can be
// stated in.
type LinkingAssociations struct {
	CrossRef string `json:"crossRef" yaml:"crossRef"`
	PubMed   string `json:"pubMed" yaml:"pubMed"`
}

// Origin returns the item id for a recognized source name.
func (l LinkingAssociations) Origin(source string) (string, bool) {
	var qid string
	switch source {
	case OriginCrossref:
		qid = l.CrossRef
	case OriginPubMed:
		qid = l.PubMed
	}
	return qid, qid != ""
}

// Mapping groups the immutable configuration every serialization decision
// is parameterized by.
type Mapping struct {
	Types       TypeMapping
	Props       PropertyMapping
	Definitions PropsDefinition
	Linking     LinkingAssociations

	// ResearcherClass is the "instance of" item for researchers created in
	// author-only mode. Empty omits the statement.
	ResearcherClass string
}

// Validate reports every problem in the mapping at once. The returned error
// wraps ErrInvalidConfig.
func (m Mapping) Validate() error {
	var result *multierror.Error

	for _, role := range m.Definitions.roles() {
		if role.id == "" {
			result = multierror.Append(result, fmt.Errorf("propsDefinition.%s is missing", role.name))
		} else if !propertyPattern.MatchString(role.id) {
			result = multierror.Append(result, fmt.Errorf("propsDefinition.%s: %q is not a property id", role.name, role.id))
		}
	}

	seen := make(map[string]bool)
	for _, pf := range m.Props {
		if !propertyPattern.MatchString(pf.Property) {
			result = multierror.Append(result, fmt.Errorf("propMapping: %q is not a property id", pf.Property))
		}
		if pf.Field == "" {
			result = multierror.Append(result, fmt.Errorf("propMapping.%s: empty CSL field", pf.Property))
		}
		if seen[pf.Property] {
			result = multierror.Append(result, fmt.Errorf("propMapping.%s: listed twice", pf.Property))
		}
		seen[pf.Property] = true
	}

	for cslType, qid := range m.Types {
		if !itemPattern.MatchString(qid) {
			result = multierror.Append(result, fmt.Errorf("types.%s: %q is not an item id", cslType, qid))
		}
	}

	for _, q := range []struct{ name, id string }{
		{"qidsLinkingAssociations.crossRef", m.Linking.CrossRef},
		{"qidsLinkingAssociations.pubMed", m.Linking.PubMed},
		{"researcherClass", m.ResearcherClass},
	} {
		if q.id != "" && !itemPattern.MatchString(q.id) {
			result = multierror.Append(result, fmt.Errorf("%s: %q is not an item id", q.name, q.id))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultMapping returns the Wikidata configuration.
func DefaultMapping() Mapping {
	return Mapping{
		Types:           DefaultTypes(),
		Props:           DefaultProps(),
		Definitions:     DefaultPropsDefinition(),
		Linking:         DefaultLinkingAssociations(),
		ResearcherClass: "Q5",
	}
}

// DefaultProps returns the Wikidata property mapping in output order.
func DefaultProps() PropertyMapping {
	return PropertyMapping{
		{"P50", "author"},
		{"P212", "ISBN"},
		{"P304", "page"},
		{"P356", "DOI"},
		{"P407", "language"},
		{"P433", "issue"},
		{"P478", "volume"},
		{"P577", "issued"},
		{"P496", "ORCID"},
		{"P698", "PMID"},
		{"P856", "URL"},
		{"P932", "PMCID"},
		{"P1104", "number-of-pages"},
		{"P1433", "ISSN"},
		{"P1476", "title"},
		{"P2093", "author"},
	}
}

// DefaultTypes maps CSL types to Wikidata classes. The entries follow the
// Wikidata "exact match" (P2888) links to the CSL type ontology, except book
// (edition, since an ISBN identifies an edition), graphic, pamphlet and
// personal_communication, which have no exact match.
func DefaultTypes() TypeMapping {
	return TypeMapping{
		"article":                "Q191067",
		"article-journal":        "Q13442814",
		"article-magazine":       "Q30070590",
		"article-newspaper":      "Q5707594",
		"bill":                   "Q686822",
		"broadcast":              "Q11578774",
		"chapter":                "Q1980247",
		"dataset":                "Q1172284",
		"entry":                  "Q10389811",
		"entry-dictionary":       "Q1580166",
		"entry-encyclopedia":     "Q13433827",
		"figure":                 "Q30070753",
		"interview":              "Q178651",
		"legal_case":             "Q2334719",
		"legislation":            "Q49371",
		"manuscript":             "Q87167",
		"map":                    "Q4006",
		"motion_picture":         "Q11424",
		"musical_score":          "Q187947",
		"paper-conference":       "Q23927052",
		"patent":                 "Q253623",
		"post":                   "Q7216866",
		"post-weblog":            "Q17928402",
		"report":                 "Q10870555",
		"review":                 "Q265158",
		"review-book":            "Q637866",
		"song":                   "Q7366",
		"speech":                 "Q861911",
		"thesis":                 "Q1266946",
		"treaty":                 "Q131569",
		"webpage":                "Q36774",
		"book":                   "Q3331189",
		"graphic":                "Q4502142",
		"pamphlet":               "Q190399",
		"personal_communication": "Q628523",
	}
}

// DefaultPropsDefinition returns the Wikidata role properties.
func DefaultPropsDefinition() PropsDefinition {
	return PropsDefinition{
		Author:                   "P50",
		ISSN:                     "P236",
		OrcidID:                  "P496",
		IsoLanguageCodeTwoLetter: "P218",
		OrdinalNumber:            "P1545",
		StatedAs:                 "P1932",
		StatedIn:                 "P248",
		InstanceOf:               "P31",
		PMCID:                    "P932",
		Retrieved:                "P813",
		DOI:                      "P356",
		CitesWork:                "P2860",
		ISBN:                     "P212",
	}
}

// DefaultLinkingAssociations returns the Wikidata items for Crossref and
// PubMed.
func DefaultLinkingAssociations() LinkingAssociations {
	return LinkingAssociations{
		CrossRef: "Q5188229",
		PubMed:   "Q180686",
	}
}
