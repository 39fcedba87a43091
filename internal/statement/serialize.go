// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package statement encodes CSL records as QuickStatements. A record the
// knowledge base does not hold yet becomes a CREATE block; a record whose DOI
// already resolves to an item only gets the authorship and citation
// statements that item is missing.
package statement

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/csl-quickstatements/internal/wikibase"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Outcome says what WriteRecord did with a record.
type Outcome int

const (
	// Skipped records have no type mapping and produce no output.
	Skipped Outcome = iota
	// Created records produce a CREATE block.
	Created
	// Updated records already exist and produce incremental lines only.
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "skipped"
	}
}

// Serializer writes QuickStatements for records resolved against Cache.
type Serializer struct {
	Mapping types.Mapping

	// Cache holds the lookups of the current batch; nil is treated as empty.
	Cache *wikibase.Cache

	// Now returns the retrieval date used when a record has no accessed
	// date. Defaults to time.Now.
	Now func() time.Time

	// Log receives warnings about skipped records; nil discards them.
	Log io.Writer
}

func (s *Serializer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Serializer) warnf(format string, args ...any) {
	if s.Log != nil {
		fmt.Fprintf(s.Log, "warning: "+format+"\n", args...)
	}
}

// WriteRecord writes the statements for rec to w.
func (s *Serializer) WriteRecord(w io.Writer, rec *types.Record) (Outcome, error) {
	instance, ok := s.Mapping.Types.Lookup(rec.Type)
	if !ok {
		s.warnf("skipping record %q: no item mapped for type %q", rec.ID.String(), rec.Type)
		return Skipped, nil
	}

	prov := s.Provenance(rec)
	var b strings.Builder
	outcome := Created

	if subject, found := s.Cache.Item(wikibase.CategoryDOI, rec.DOI.String()); found {
		outcome = Updated
		s.writeAuthorUpdates(&b, rec, subject, prov)
		s.writeReferenceUpdates(&b, rec, subject, prov)
	} else {
		s.writeCreate(&b, rec, instance, prov)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return outcome, fmt.Errorf("writing record %q: %w", rec.ID.String(), err)
	}
	return outcome, nil
}

func (s *Serializer) writeCreate(b *strings.Builder, rec *types.Record, instance, prov string) {
	d := s.Mapping.Definitions
	b.WriteString("\tCREATE\n\n")
	fmt.Fprintf(b, "\tLAST\t%s\t%s%s\n", d.InstanceOf, instance, prov)
	if title := rec.Title.String(); title != "" {
		fmt.Fprintf(b, "\tLAST\tLen\t%s\n", quote(title))
	}
	for _, pf := range s.Mapping.Props {
		for _, v := range s.fieldValues(rec, pf) {
			fmt.Fprintf(b, "\tLAST\t%s\t%s%s\n", pf.Property, v, prov)
		}
	}
	b.WriteString("\n")
}

// writeAuthorUpdates adds the authorship statements subject lacks.
func (s *Serializer) writeAuthorUpdates(b *strings.Builder, rec *types.Record, subject, prov string) {
	d := s.Mapping.Definitions
	for i, a := range rec.Author {
		id := wikibase.NormalizeORCID(a.ORCID)
		if id == "" || s.Cache.Asserted(wikibase.CategoryOrcidStatements, id, subject) {
			continue
		}
		if v := s.authorValue(a, i+1, d.Author); v != "" {
			fmt.Fprintf(b, "\t%s\t%s\t%s%s\n", subject, d.Author, v, prov)
		}
	}
}

// writeReferenceUpdates adds the citation statements subject lacks.
// References that do not resolve to an item are dropped.
func (s *Serializer) writeReferenceUpdates(b *strings.Builder, rec *types.Record, subject, prov string) {
	d := s.Mapping.Definitions
	seen := make(map[string]bool)
	for _, ref := range rec.References {
		id := wikibase.NormalizeReference(ref)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if s.Cache.Asserted(wikibase.CategoryReferenceStatements, id, subject) {
			continue
		}
		if cited, ok := s.Cache.Item(wikibase.CategoryReferences, id); ok {
			fmt.Fprintf(b, "\t%s\t%s\t%s%s\n", subject, d.CitesWork, cited, prov)
		}
	}
}

// fieldValues serializes the field feeding pf into zero or more statement
// values.
func (s *Serializer) fieldValues(rec *types.Record, pf types.PropertyField) []string {
	switch pf.Field {
	case "author":
		return s.authorValues(rec, pf.Property)
	case "issued":
		if rec.Issued.IsZero() {
			return nil
		}
		return []string{EncodeDate(rec.Issued)}
	case "accessed":
		if rec.Accessed.IsZero() {
			return nil
		}
		return []string{EncodeDate(rec.Accessed)}
	}

	v, ok := rec.Value(pf.Field)
	if !ok {
		return nil
	}
	switch pf.Field {
	case "page":
		return []string{quote(strings.Replace(v, "--", "-", 1))}
	case "ISSN":
		return s.lookup(wikibase.CategoryISSN, v)
	case "language":
		return s.lookup(wikibase.CategoryLanguage, v)
	case "DOI":
		return []string{quote(strings.ToUpper(v))}
	case "ISBN":
		if rec.Type == "chapter" {
			return nil
		}
		return []string{quote(v)}
	case "URL":
		if rec.Type == "article-journal" || rec.Type == "chapter" {
			return nil
		}
		return []string{quote(v)}
	case "number-of-pages":
		return []string{v}
	case "title":
		return []string{"en:" + quote(v)}
	default:
		return []string{quote(v)}
	}
}

func (s *Serializer) lookup(cat wikibase.Category, id string) []string {
	if qid, ok := s.Cache.Item(cat, id); ok {
		return []string{qid}
	}
	return nil
}

// quoteCleaner flattens characters that would break the line or column
// structure of a statement.
var quoteCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// quote renders s as a QuickStatements string value.
func quote(s string) string {
	return `"` + quoteCleaner.Replace(s) + `"`
}
