// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		date *types.Date
		want string
	}{
		{"nil", nil, ""},
		{"year", &types.Date{DateParts: [][]types.Text{{"2019"}}}, "2019"},
		{"year month", &types.Date{DateParts: [][]types.Text{{"2019", "9"}}}, "2019-09"},
		{"full", &types.Date{DateParts: [][]types.Text{{"2019", "9", "24"}}}, "2019-09-24"},
		{"short year padded", &types.Date{DateParts: [][]types.Text{{"800", "1", "1"}}}, "0800-01-01"},
		{"range uses start", &types.Date{DateParts: [][]types.Text{{"2019", "1"}, {"2019", "3"}}}, "2019-01"},
		{"extra parts dropped", &types.Date{DateParts: [][]types.Text{{"2019", "1", "2", "3"}}}, "2019-01-02"},
		{"raw iso", &types.Date{Raw: "2019-09-24"}, "2019-09-24"},
		{"raw timestamp", &types.Date{Raw: "2019-09-24T10:11:12Z"}, "2019-09-24"},
		{"raw unpadded", &types.Date{Raw: "2019-9-4"}, "2019-09-04"},
		{"raw free text", &types.Date{Raw: "Spring 2019"}, ""},
		{"raw slashed ten characters", &types.Date{Raw: "12/31/2019"}, ""},
		{"raw zero month", &types.Date{Raw: "2019-00"}, "2019"},
		{"literal", &types.Date{Literal: "circa 1900"}, ""},
		{"empty month part", &types.Date{DateParts: [][]types.Text{{"2019", ""}}}, "2019"},
		{"zero day part", &types.Date{DateParts: [][]types.Text{{"2019", "9", "0"}}}, "2019-09"},
		{"empty year part", &types.Date{DateParts: [][]types.Text{{"", "9"}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.date))
		})
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		name   string
		author types.Author
		want   string
	}{
		{"given family", types.Author{Given: "Jürgen", Family: "Bajorath"}, "Jürgen Bajorath"},
		{"initials", types.Author{Given: "J. Jesús", Family: "Naveja"}, "J. Jesús Naveja"},
		{"particles and suffix", types.Author{Given: "Ludwig", DroppingParticle: "van", Family: "Beethoven", Suffix: "Jr."}, "Ludwig van Beethoven Jr."},
		{"non-dropping", types.Author{Given: "Vincent", NonDroppingParticle: "van", Family: "Gogh"}, "Vincent van Gogh"},
		{"literal wins", types.Author{Literal: "World Health Organization", Family: "x"}, "World Health Organization"},
		{"family only", types.Author{Family: "Plato"}, "Plato"},
		{"empty", types.Author{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatName(tt.author))
		})
	}
}

func TestFirstGiven(t *testing.T) {
	assert.Equal(t, "José", FirstGiven(types.Author{Given: "José L."}))
	assert.Equal(t, "Ann", FirstGiven(types.Author{Given: "  Ann  "}))
	assert.Equal(t, "", FirstGiven(types.Author{}))
}

func TestLoadJSONArray(t *testing.T) {
	recs, err := Load(strings.NewReader(`[
		{"type": "article-journal", "title": "One", "DOI": "10.1/one"},
		{"type": "book", "title": "Two", "ISBN": 9781234567897}
	]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Text("One"), recs[0].Title)
	assert.Equal(t, types.Text("9781234567897"), recs[1].ISBN)
}

func TestLoadJSONObject(t *testing.T) {
	recs, err := Load(strings.NewReader(`{"type": "webpage", "URL": "https://example.org"}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.Text("https://example.org"), recs[0].URL)
}

func TestLoadYAML(t *testing.T) {
	src := `
references:
  - id: naveja2019
    type: article-journal
    title: A general approach for retrosynthetic molecular core analysis
    DOI: 10.1186/s13321-019-0380-5
    volume: 11
    issued:
      date-parts:
        - [2019, 9, 24]
    accessed: 2019-09-28
    author:
      - family: Naveja
        given: J. Jesús
`
	recs, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, types.Text("naveja2019"), r.ID)
	assert.Equal(t, types.Text("11"), r.Volume)
	assert.Equal(t, "2019-09-24", FormatDate(r.Issued))
	assert.Equal(t, "2019-09-28", FormatDate(r.Accessed))
	require.Len(t, r.Author, 1)
	assert.Equal(t, "Naveja", r.Author[0].Family)
}

func TestLoadYAMLList(t *testing.T) {
	recs, err := Load(strings.NewReader("- type: book\n  title: Alpha\n- type: book\n  title: Beta\n"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Text("Beta"), recs[1].Title)
}

func TestLoadEmptyAndInvalid(t *testing.T) {
	recs, err := Load(strings.NewReader("   \n"))
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = Load(strings.NewReader(`[{"type": "book",`))
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte(`[{"type": "book", "title": "A"}]`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("- type: book\n  title: B\n"), 0o644))

	recs, err := LoadFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Text("A"), recs[0].Title)
	assert.Equal(t, types.Text("B"), recs[1].Title)

	_, err = LoadFiles([]string{filepath.Join(dir, "missing.json")})
	assert.Error(t, err)
}
