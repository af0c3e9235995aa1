package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "Washington", c.Region)
	assert.Equal(t, 2020, c.Year)
	assert.Equal(t, []int{4, 5, 6}, c.RegionalMonths)
	assert.Equal(t, 1000000, c.TripsMaxRows)
	assert.Equal(t, 100000, c.RegionalMaxRows)
	assert.Equal(t, []string{"yearid"}, c.ExcludeColumns)
	assert.Equal(t, "png", c.ChartFormat)
	require.NoError(t, c.Validate())
}

func TestEnvOverridesDefaults(t *testing.T) {
	isolateHome(t)
	t.Setenv("RIDESTATS_REGION", "Toronto")
	t.Setenv("RIDESTATS_CASE_STATE", "Ontario")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Toronto", c.Region)
	assert.Equal(t, "Ontario", c.CaseState)
}

func TestSaveAndLoadRoundTripFile(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "cfg.yaml")
	c, err := Load("")
	require.NoError(t, err)
	c.Region = "Montreal"
	c.Month = 5
	c.ChartFormat = "html"
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Montreal", got.Region)
	assert.Equal(t, 5, got.Month)
	assert.Equal(t, "html", got.ChartFormat)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	home := isolateHome(t)
	_, err := Load(filepath.Join(home, "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveDefaultLocation(t *testing.T) {
	home := isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, Save(c, ""))
	_, err = os.Stat(filepath.Join(home, ".ridestats", "config.yaml"))
	assert.NoError(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	c := &Global{
		Region:         "../../etc",
		Month:          2,
		Year:           2020,
		RegionalMonths: []int{4, 5, 6},
		ChartFormat:    "gif",
		CaseState:      "Washington",
	}
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRegion))
	assert.True(t, errors.Is(err, ErrMonthNotAllowed))
	assert.Contains(t, err.Error(), "chart_format")
}

func TestValidateCanonicalizesRegion(t *testing.T) {
	c := &Global{Region: "toronto", Month: 6, Year: 2020, RegionalMonths: []int{4, 5, 6}, ChartFormat: "png", CaseState: "Washington"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "Toronto", c.Region)
}
