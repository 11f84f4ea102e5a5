package selectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_NothingEmpty(t *testing.T) {
	set := Default()

	assert.NotEmpty(t, set.JobCards)
	assert.NotEmpty(t, set.Title)
	assert.NotEmpty(t, set.Company)
	assert.NotEmpty(t, set.JobURL)
	assert.NotEmpty(t, set.NextPage)
	assert.NotEmpty(t, set.ConsentButtons)
	assert.NotEmpty(t, set.ChallengeMarkers)
	assert.NotEmpty(t, set.ChallengeTitles)
}

func TestLoad_OverlayReplacesOnlyPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	overlay := `
job_cards:
  - 'li[data-testid="newJobCard"]'
next_page:
  - 'nav a[rel="next"]'
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o600))

	set, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{`li[data-testid="newJobCard"]`}, set.JobCards)
	assert.Equal(t, []string{`nav a[rel="next"]`}, set.NextPage)
	// Untouched keys keep the defaults.
	assert.Equal(t, Default().Title, set.Title)
	assert.Equal(t, Default().ConsentButtons, set.ConsentButtons)
}

func TestLoad_MissingFileReturnsDefaultsAndError(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, Default(), set)
}
