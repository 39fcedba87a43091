// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orcid

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

type fakeRegistry struct {
	mu      sync.Mutex
	results map[string][]string
	people  map[string]Person
	queries []string
}

func (f *fakeRegistry) Search(_ context.Context, query string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results[query]
}

func (f *fakeRegistry) Person(_ context.Context, id string) Person {
	if p, ok := f.people[id]; ok {
		return p
	}
	return Person{ORCID: id}
}

func (f *fakeRegistry) searched(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == query {
			return true
		}
	}
	return false
}

func TestMatch(t *testing.T) {
	candidates := []Person{
		{ORCID: "A", Given: "Maria", Family: "Lopez"},
		{ORCID: "B", Given: "Maria Elena", Family: "Lopez"},
		{ORCID: "C", Given: "Jun", Family: "Li"},
		{ORCID: "D", Family: "Li"},
	}
	tests := []struct {
		name   string
		author types.Author
		want   string
	}{
		{"exact full given", types.Author{Given: "maria elena", Family: "LOPEZ"}, "B"},
		{"first token fallback", types.Author{Given: "Jun K.", Family: "Li"}, "C"},
		{"first hit wins", types.Author{Given: "Maria", Family: "Lopez"}, "A"},
		{"no family match", types.Author{Given: "Jun", Family: "Wang"}, ""},
		{"no family", types.Author{Given: "Jun"}, ""},
		{"no given", types.Author{Family: "Li"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.author, candidates))
		})
	}
}

func TestNameQuery(t *testing.T) {
	assert.Equal(t, "(family-name:Li AND given-names:Jun)", nameQuery("Li", "Jun"))
	assert.Equal(t, `(family-name:"de Souza" AND given-names:"Ana \"Bia\" M.")`, nameQuery("de Souza", `Ana "Bia" M.`))
}

func TestResolve_DOICandidates(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]string{
			"doi-self:10.1/x": {"0000-0001", "0000-0002", "0000-0003"},
		},
		people: map[string]Person{
			"0000-0001": {ORCID: "0000-0001", Given: "Jun", Family: "Li"},
			"0000-0002": {ORCID: "0000-0002", Given: "Maria", Family: "Lopez"},
			"0000-0003": {ORCID: "0000-0003", Family: "Anon"},
		},
	}
	records := []types.Record{{
		DOI: "10.1/x",
		Author: []types.Author{
			{Given: "Jun", Family: "Li"},
			{Given: "Maria T.", Family: "Lopez"},
			{Given: "Kept", Family: "Known", ORCID: "0000-0009"},
		},
	}}

	r := &Resolver{Registry: reg}
	out := r.Resolve(context.Background(), records)
	require.Len(t, out, 1)
	assert.Equal(t, "0000-0001", out[0].Author[0].ORCID)
	assert.Equal(t, "0000-0002", out[0].Author[1].ORCID)
	assert.Equal(t, "0000-0009", out[0].Author[2].ORCID)

	assert.Empty(t, records[0].Author[0].ORCID, "input must not be modified")
	assert.Len(t, reg.queries, 1, "no name search once the DOI matched everyone")
}

func TestResolve_NameSearch(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]string{
			"(family-name:Li AND given-names:Jun)":                                                        {"0000-0001"},
			`(family-name:Lopez AND given-names:"Maria T.")`:                                              {"0000-0002", "0000-0003"},
			`(family-name:Lopez AND given-names:"Maria T.") OR (family-name:Lopez AND given-names:Maria)`: {"0000-0002", "0000-0003"},
			`(family-name:Wu AND given-names:"Ann B.")`:                                                   nil,
			`(family-name:Wu AND given-names:"Ann B.") OR (family-name:Wu AND given-names:Ann)`:           {"0000-0004"},
		},
	}
	records := []types.Record{{
		Author: []types.Author{
			{Given: "Jun", Family: "Li"},
			{Given: "Maria T.", Family: "Lopez"},
			{Given: "Ann B.", Family: "Wu"},
			{Family: "Solo"},
			{Literal: "Consortium"},
		},
	}}

	out := (&Resolver{Registry: reg, Concurrency: 2}).Resolve(context.Background(), records)
	assert.Equal(t, "0000-0001", out[0].Author[0].ORCID)
	assert.Empty(t, out[0].Author[1].ORCID, "ambiguous results are rejected")
	assert.Equal(t, "0000-0004", out[0].Author[2].ORCID)
	assert.Empty(t, out[0].Author[3].ORCID)
	assert.Empty(t, out[0].Author[4].ORCID)

	assert.False(t, reg.searched("(family-name:Li AND given-names:Jun) OR (family-name:Li AND given-names:Jun)"))
	for _, q := range reg.queries {
		assert.NotContains(t, q, "doi-self:", "records without a DOI skip the DOI search")
	}
}

func TestResolve_AllResolvedSkipsRegistry(t *testing.T) {
	reg := &fakeRegistry{}
	records := []types.Record{{DOI: "10.1/y", Author: []types.Author{{Family: "A", Given: "B", ORCID: "0000-0001"}}}}
	out := (&Resolver{Registry: reg}).Resolve(context.Background(), records)
	assert.Equal(t, records, out)
	assert.Empty(t, reg.queries)
}

func TestResolve_Deterministic(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]string{"doi-self:10.1/z": {"1", "2"}},
		people: map[string]Person{
			"1": {ORCID: "1", Given: "Sam", Family: "Lee"},
			"2": {ORCID: "2", Given: "Sam", Family: "Lee"},
		},
	}
	records := []types.Record{{DOI: "10.1/z", Author: []types.Author{{Given: "Sam", Family: "Lee"}}}}
	for range 20 {
		out := (&Resolver{Registry: reg}).Resolve(context.Background(), records)
		assert.Equal(t, "1", out[0].Author[0].ORCID)
	}
}

type memoryCache struct {
	mu      sync.Mutex
	people  map[string]Person
	fetched map[string]time.Time
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{people: map[string]Person{}, fetched: map[string]time.Time{}}
}

func (m *memoryCache) GetPerson(_ context.Context, id string) (Person, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.people[id]
	return p, m.fetched[id], ok, nil
}

func (m *memoryCache) PutPerson(_ context.Context, p Person, fetched time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ORCID] = p
	m.fetched[p.ORCID] = fetched
	m.puts++
	return nil
}

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v3.0/search":
			assert.Equal(t, "doi-self:10.1/x", r.URL.Query().Get("q"))
			w.Write([]byte(`{"result": [
				{"orcid-identifier": {"uri": "https://orcid.org/0000-0001-0000-0001", "path": "0000-0001-0000-0001", "host": "orcid.org"}},
				{"orcid-identifier": {"path": "0000-0001-0000-0002"}}
			], "num-found": 2}`))
		case "/v3.0/0000-0001-0000-0001/person":
			w.Write([]byte(`{"name": {"given-names": {"value": "Jun "}, "family-name": {"value": "Li"}}}`))
		case "/v3.0/0000-0001-0000-0002/person":
			w.Write([]byte(`{"name": null}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClient(t *testing.T) {
	var hits int
	ts := newTestServer(t, &hits)
	defer ts.Close()

	c := NewClient(types.RegistryConfig{BaseURL: ts.URL + "/v3.0", Token: "secret", Rate: 1000}, nil, nil)

	ids := c.Search(context.Background(), "doi-self:10.1/x")
	assert.Equal(t, []string{"0000-0001-0000-0001", "0000-0001-0000-0002"}, ids)

	assert.Equal(t, Person{ORCID: "0000-0001-0000-0001", Given: "Jun", Family: "Li"}, c.Person(context.Background(), ids[0]))
	p := c.Person(context.Background(), ids[1])
	assert.Equal(t, Person{ORCID: "0000-0001-0000-0002"}, p)
	assert.False(t, p.Named())
}

func TestClient_FailuresAreEmpty(t *testing.T) {
	var hits int
	ts := newTestServer(t, &hits)
	defer ts.Close()

	var log bytes.Buffer
	c := NewClient(types.RegistryConfig{BaseURL: ts.URL + "/v3.0/", Token: "secret", Rate: 1000}, nil, &log)

	assert.Equal(t, Person{ORCID: "0000-0000-0000-0000"}, c.Person(context.Background(), "0000-0000-0000-0000"))
	assert.Contains(t, log.String(), "warning: ORCID person 0000-0000-0000-0000 failed")

	c.BaseURL = "http://127.0.0.1:1/"
	assert.Nil(t, c.Search(context.Background(), "anything"))
	assert.Contains(t, log.String(), `ORCID search "anything" failed`)
}

func TestClient_PersonCache(t *testing.T) {
	var hits int
	ts := newTestServer(t, &hits)
	defer ts.Close()

	cache := newMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClient(types.RegistryConfig{BaseURL: ts.URL + "/v3.0/", Token: "secret", Rate: 1000, PersonCacheTTL: time.Hour}, cache, nil)
	c.Now = func() time.Time { return now }

	id := "0000-0001-0000-0001"
	c.Person(context.Background(), id)
	c.Person(context.Background(), id)
	assert.Equal(t, 1, hits, "second lookup served from cache")
	assert.Equal(t, 1, cache.puts)

	now = now.Add(2 * time.Hour)
	p := c.Person(context.Background(), id)
	assert.Equal(t, 2, hits, "stale entry refetched")
	assert.Equal(t, "Li", p.Family)
}
