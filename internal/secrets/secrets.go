// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Recognized keys: orcid-token, contact-email.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Recognized secret keys.
const (
	// ORCIDToken is a read-public bearer token for the ORCID API.
	ORCIDToken = "orcid-token"

	// ContactEmail is added to the User-Agent sent to the SPARQL endpoint
	// and the ORCID API, as both services ask of automated clients.
	ContactEmail = "contact-email"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if warn != nil {
				fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			}
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// UserAgent appends a mailto contact to agent when email is set:
// "csl-quickstatements/0.1 (mailto:me@example.org)".
func UserAgent(agent, email string) string {
	email = strings.TrimSpace(email)
	if email == "" || strings.Contains(agent, "mailto:") {
		return agent
	}
	return agent + " (mailto:" + email + ")"
}
