package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrandt/indeedhunt/internal/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func jobs() []types.JobListing {
	return []types.JobListing{
		{Title: "Engineer", Company: "ACME", URL: "https://de.indeed.com/viewjob?jk=a1", JobID: "a1"},
		{Title: "Developer", Company: "Beispiel", URL: "https://de.indeed.com/viewjob?jk=b2", JobID: "b2"},
	}
}

func TestRecordRun(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	require.NoError(t, s.RecordRun("software engineer", "Berlin", 1, jobs(), now.Add(-time.Minute), now))

	runs, err := s.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	listings, err := s.CountListings()
	require.NoError(t, err)
	assert.Equal(t, 2, listings)
}

func TestRecordRun_UpsertsAcrossRuns(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	require.NoError(t, s.RecordRun("software engineer", "Berlin", 1, jobs(), now, now))
	// Second run sees one repeat and one new listing.
	second := append(jobs()[:1],
		types.JobListing{Title: "Analyst", Company: "Drittfirma", URL: "https://de.indeed.com/viewjob?jk=c3", JobID: "c3"})
	require.NoError(t, s.RecordRun("software engineer", "Berlin", 1, second, now, now))

	runs, err := s.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	listings, err := s.CountListings()
	require.NoError(t, err)
	assert.Equal(t, 3, listings, "repeat listing is upserted, not duplicated")
}
