// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestDefaultMappingIsValid(t *testing.T) {
	assert.NoError(t, DefaultMapping().Validate())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	m := DefaultMapping()
	m.Definitions.Author = ""
	m.Definitions.StatedAs = "1932"
	m.Props = append(m.Props, PropertyField{Property: "P50", Field: "author"}, PropertyField{Property: "X1", Field: ""})
	m.Types["thesis"] = "thesis"
	m.ResearcherClass = "P5"

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	msg := err.Error()
	for _, want := range []string{
		"propsDefinition.author is missing",
		`propsDefinition.statedAs: "1932" is not a property id`,
		"propMapping.P50: listed twice",
		`propMapping: "X1" is not a property id`,
		"propMapping.X1: empty CSL field",
		`types.thesis: "thesis" is not an item id`,
		`researcherClass: "P5" is not an item id`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestPropertyMappingUnmarshalObjectKeepsOrder(t *testing.T) {
	src := `{"P4": "author", "P45": "ISBN", "P26": "DOI", "P31": "author"}`
	var m PropertyMapping
	require.NoError(t, yaml.Unmarshal([]byte(src), &m))
	assert.Equal(t, PropertyMapping{
		{"P4", "author"},
		{"P45", "ISBN"},
		{"P26", "DOI"},
		{"P31", "author"},
	}, m)
}

func TestPropertyMappingUnmarshalList(t *testing.T) {
	src := `
- property: P1476
  field: title
- property: P356
  field: DOI
`
	var m PropertyMapping
	require.NoError(t, yaml.Unmarshal([]byte(src), &m))
	assert.Equal(t, PropertyMapping{{"P1476", "title"}, {"P356", "DOI"}}, m)
}

func TestPropertyMappingUnmarshalRejectsNested(t *testing.T) {
	var m PropertyMapping
	err := yaml.Unmarshal([]byte(`{"P50": {"field": "author"}}`), &m)
	assert.Error(t, err)
}

func TestSourceProperty(t *testing.T) {
	assert.Equal(t, "S248", SourceProperty("P248"))
	assert.Equal(t, "S813", SourceProperty("P813"))
}

func TestLinkingAssociationsOrigin(t *testing.T) {
	l := DefaultLinkingAssociations()

	qid, ok := l.Origin("Crossref")
	assert.True(t, ok)
	assert.Equal(t, "Q5188229", qid)

	qid, ok = l.Origin("PubMed")
	assert.True(t, ok)
	assert.Equal(t, "Q180686", qid)

	_, ok = l.Origin("crossref")
	assert.False(t, ok)
	_, ok = LinkingAssociations{}.Origin("Crossref")
	assert.False(t, ok)
}

func TestTypeMappingLookup(t *testing.T) {
	m := TypeMapping{"article-journal": "Q13442814", "bill": ""}
	qid, ok := m.Lookup("article-journal")
	assert.True(t, ok)
	assert.Equal(t, "Q13442814", qid)
	_, ok = m.Lookup("bill")
	assert.False(t, ok)
	_, ok = m.Lookup("song")
	assert.False(t, ok)
}
