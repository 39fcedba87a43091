// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/csl-quickstatements/internal/orcid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "persons.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetPerson(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, ok, err := s.GetPerson(ctx, "0000-0001-0000-0001")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := orcid.Person{ORCID: "0000-0001-0000-0001", Given: "Jun", Family: "Li"}
	require.NoError(t, s.PutPerson(ctx, p, at))

	got, fetched, ok, err := s.GetPerson(ctx, p.ORCID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, at.Equal(fetched))

	p.Given = "Jun K."
	require.NoError(t, s.PutPerson(ctx, p, at.Add(time.Hour)))
	got, fetched, _, err = s.GetPerson(ctx, p.ORCID)
	require.NoError(t, err)
	assert.Equal(t, "Jun K.", got.Given)
	assert.True(t, at.Add(time.Hour).Equal(fetched))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.PutPerson(ctx, orcid.Person{ORCID: "a"}, now))
	require.NoError(t, s.PutPerson(ctx, orcid.Person{ORCID: "b", Given: "B", Family: "Bee"}, now))

	removed, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			assert.NoError(t, s.PutPerson(ctx, orcid.Person{ORCID: id, Given: "G", Family: "F"}, time.Now()))
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persons.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.PutPerson(ctx, orcid.Person{ORCID: "x", Given: "X", Family: "Ex"}, time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, _, ok, err := s.GetPerson(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsedThroughClient(t *testing.T) {
	s := openTestStore(t)
	c := &orcid.Client{Cache: s, CacheTTL: time.Hour, BaseURL: "http://127.0.0.1:1/"}
	require.NoError(t, s.PutPerson(context.Background(), orcid.Person{ORCID: "0000-0001", Given: "Cached", Family: "Person"}, time.Now()))

	p := c.Person(context.Background(), "0000-0001")
	assert.Equal(t, "Cached", p.Given)
}
