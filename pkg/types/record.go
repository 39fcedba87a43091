// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the csl-quickstatements
// pipeline: the CSL citation record model, the property and type mappings that
// parameterize statement generation, and runtime configuration.
package types

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Text is a CSL scalar. CSL-JSON producers emit fields such as volume, issue
// and page either as strings or as numbers; Text accepts both. A list value
// (Crossref emits ISSN as an array) collapses to its first non-empty element.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s, err := scalarString(v)
	if err != nil {
		return fmt.Errorf("CSL scalar %s: %w", string(data), err)
	}
	*t = Text(s)
	return nil
}

// String returns the trimmed value.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case []any:
		for _, elem := range x {
			s, err := scalarString(elem)
			if err != nil {
				return "", err
			}
			if s != "" {
				return s, nil
			}
		}
		return "", nil
	case map[string]any:
		return "", fmt.Errorf("object is not a scalar")
	default:
		return cast.ToStringE(v)
	}
}

// Record is one CSL-JSON citation item. Only the fields the compiler reads are
// typed; every other scalar field is kept in Extra so that a property mapping
// can address it by its CSL name.
type Record struct {
	ID            Text         `json:"id,omitempty"`
	Type          string       `json:"type"`
	Title         Text         `json:"title,omitempty"`
	Author        []Author     `json:"author,omitempty"`
	Issued        *Date        `json:"issued,omitempty"`
	Accessed      *Date        `json:"accessed,omitempty"`
	DOI           Text         `json:"DOI,omitempty"`
	ISBN          Text         `json:"ISBN,omitempty"`
	ISSN          Text         `json:"ISSN,omitempty"`
	Language      Text         `json:"language,omitempty"`
	Page          Text         `json:"page,omitempty"`
	Volume        Text         `json:"volume,omitempty"`
	Issue         Text         `json:"issue,omitempty"`
	URL           Text         `json:"URL,omitempty"`
	NumberOfPages Text         `json:"number-of-pages,omitempty"`
	PMID          Text         `json:"PMID,omitempty"`
	PMCID         Text         `json:"PMCID,omitempty"`
	Source        Text         `json:"source,omitempty"`
	Graph         []GraphEntry `json:"_graph,omitempty"`

	// References lists external identifiers (DOI or ISBN) of works this
	// record cites. It is supplied per record by the compile options, not
	// decoded from CSL, whose own "references" field is free text.
	References []string `json:"-"`

	// Extra holds the remaining top-level CSL fields.
	Extra map[string]any `json:"-"`
}

// recordFields lists the JSON keys decoded into typed Record fields.
var recordFields = map[string]bool{
	"id": true, "type": true, "title": true, "author": true, "issued": true,
	"accessed": true, "DOI": true, "ISBN": true, "ISSN": true, "language": true,
	"page": true, "volume": true, "issue": true, "URL": true,
	"number-of-pages": true, "PMID": true, "PMCID": true, "source": true,
	"_graph": true,
}

// UnmarshalJSON decodes the typed fields and collects the rest into Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if recordFields[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	*r = Record(p)
	return nil
}

// Value returns the scalar value of the CSL field named field. The boolean
// is false when the field is absent, empty, or not a scalar. Name and date
// fields are not scalars; callers read Author, Issued and Accessed directly.
func (r *Record) Value(field string) (string, bool) {
	var t Text
	switch field {
	case "id":
		t = r.ID
	case "type":
		t = Text(r.Type)
	case "title":
		t = r.Title
	case "DOI":
		t = r.DOI
	case "ISBN":
		t = r.ISBN
	case "ISSN":
		t = r.ISSN
	case "language":
		t = r.Language
	case "page":
		t = r.Page
	case "volume":
		t = r.Volume
	case "issue":
		t = r.Issue
	case "URL":
		t = r.URL
	case "number-of-pages":
		t = r.NumberOfPages
	case "PMID":
		t = r.PMID
	case "PMCID":
		t = r.PMCID
	case "source":
		t = r.Source
	default:
		v, ok := r.Extra[field]
		if !ok {
			return "", false
		}
		s, err := scalarString(v)
		if err != nil {
			return "", false
		}
		t = Text(s)
	}
	s := t.String()
	return s, s != ""
}

// Clone returns a copy of r whose author and reference slices are not shared
// with r, so the copy's authors can be enriched without touching the caller's
// record.
func (r Record) Clone() Record {
	c := r
	if r.Author != nil {
		c.Author = append([]Author(nil), r.Author...)
	}
	if r.References != nil {
		c.References = append([]string(nil), r.References...)
	}
	return c
}

// Author is a CSL name. ORCID may carry the https://orcid.org/ prefix.
type Author struct {
	Family              string `json:"family,omitempty"`
	Given               string `json:"given,omitempty"`
	Literal             string `json:"literal,omitempty"`
	DroppingParticle    string `json:"dropping-particle,omitempty"`
	NonDroppingParticle string `json:"non-dropping-particle,omitempty"`
	Suffix              string `json:"suffix,omitempty"`
	ORCID               string `json:"ORCID,omitempty"`
}

// Date is a CSL date: date-parts when structured, raw or literal otherwise.
// A bare JSON string decodes into Raw.
type Date struct {
	DateParts [][]Text `json:"date-parts,omitempty"`
	Raw       string   `json:"raw,omitempty"`
	Literal   string   `json:"literal,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Date{Raw: strings.TrimSpace(s)}
		return nil
	}
	type plain Date
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Date(p)
	return nil
}

// IsZero reports whether the date carries no information.
func (d *Date) IsZero() bool {
	return d == nil || (len(d.DateParts) == 0 && d.Raw == "" && d.Literal == "")
}

// String returns the date as written in the source: raw, then literal, then
// the first date-parts entry joined with "-".
func (d *Date) String() string {
	if d == nil {
		return ""
	}
	if d.Raw != "" {
		return d.Raw
	}
	if d.Literal != "" {
		return d.Literal
	}
	if len(d.DateParts) == 0 {
		return ""
	}
	parts := make([]string, len(d.DateParts[0]))
	for i, p := range d.DateParts[0] {
		parts[i] = p.String()
	}
	return strings.Join(parts, "-")
}

// GraphEntry is one step of the origin metadata a CSL producer records about
// how the item was obtained, e.g. {"type": "@pubmed/pmcid", "data": "PMC123"}.
type GraphEntry struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Values returns Data as a list of non-empty strings.
func (g GraphEntry) Values() []string {
	var raw []any
	switch x := g.Data.(type) {
	case nil:
		return nil
	case []any:
		raw = x
	default:
		raw = []any{x}
	}
	var out []string
	for _, v := range raw {
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
