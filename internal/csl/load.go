// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl reads CSL citation data and provides the CSL date and name
// formatters the statement compiler builds on.
package csl

import (
	"bytes"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads CSL-JSON (an array of items or a single item) or CSL-YAML (a
// list of items, or a document with a top-level "references" list as written
// by Pandoc) from r.
func Load(r io.Reader) ([]types.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSL input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' || data[0] == '{' {
		return decodeJSON(data)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing CSL-YAML: %w", err)
	}
	if m, ok := doc.(map[string]any); ok {
		if refs, ok := m["references"].([]any); ok {
			doc = refs
		}
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting CSL-YAML: %w", err)
	}
	return decodeJSON(converted)
}

func decodeJSON(data []byte) ([]types.Record, error) {
	if data[0] == '{' {
		var rec types.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parsing CSL-JSON item: %w", err)
		}
		return []types.Record{rec}, nil
	}
	var recs []types.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing CSL-JSON: %w", err)
	}
	return recs, nil
}

// LoadFiles reads and concatenates the records of every file, in order.
func LoadFiles(paths []string) ([]types.Record, error) {
	var all []types.Record
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", p, err)
		}
		recs, err := Load(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, recs...)
	}
	return all, nil
}
