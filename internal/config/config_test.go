package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "software engineer", cfg.JobTitle)
	assert.Equal(t, "Berlin", cfg.Location)
	assert.Equal(t, 25, cfg.Radius)
	assert.Equal(t, 15, cfg.ResultsPerPage)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.True(t, cfg.OutputCSV)
	assert.True(t, cfg.OutputJSON)
	assert.Equal(t, 10, cfg.Timeout)
	assert.False(t, cfg.Headless)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("JOB_TITLE", "data scientist")
	t.Setenv("LOCATION", "Munich")
	t.Setenv("RADIUS", "10")
	t.Setenv("MAX_PAGES", "2")
	t.Setenv("OUTPUT_JSON", "false")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "data scientist", cfg.JobTitle)
	assert.Equal(t, "Munich", cfg.Location)
	assert.Equal(t, 10, cfg.Radius)
	assert.Equal(t, 2, cfg.MaxPages)
	assert.False(t, cfg.OutputJSON)
	assert.True(t, cfg.OutputCSV)
}

func TestLoad_CLIWinsOverEnv(t *testing.T) {
	t.Setenv("JOB_TITLE", "data scientist")
	t.Setenv("RADIUS", "10")
	t.Setenv("TIMEOUT", "30")

	cfg, err := Load(Overrides{
		JobTitle: ptr("backend developer"),
		Radius:   ptr(50),
		Timeout:  ptr(60),
	})
	require.NoError(t, err)

	assert.Equal(t, "backend developer", cfg.JobTitle)
	assert.Equal(t, 50, cfg.Radius)
	assert.Equal(t, 60, cfg.Timeout)
}

func TestLoad_InlineCommentsStripped(t *testing.T) {
	t.Setenv("RADIUS", "25 # search radius in km")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Radius)
}

func TestLoad_BadInteger(t *testing.T) {
	t.Setenv("MAX_PAGES", "lots")

	_, err := Load(Overrides{})
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "MAX_PAGES", cfgErr.Key)
}

func TestLoad_NonPositiveValuesRejected(t *testing.T) {
	for _, tc := range []struct{ key, val string }{
		{"MAX_PAGES", "0"},
		{"RESULTS_PER_PAGE", "-1"},
		{"TIMEOUT", "0"},
		{"RADIUS", "-5"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load(Overrides{})
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr, "expected config error for %s=%s", tc.key, tc.val)
		})
	}
}
