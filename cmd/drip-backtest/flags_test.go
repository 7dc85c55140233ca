package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dividendlab/drip-backtest/pkg/types"
)

// TestParsePortfolio tests SYMBOL:WEIGHT parsing
func TestParsePortfolio(t *testing.T) {
	items, err := ParsePortfolio("schd:60, o:40")
	require.NoError(t, err)
	assert.Equal(t, []types.PortfolioItem{
		{Symbol: "SCHD", Weight: 60},
		{Symbol: "O", Weight: 40},
	}, items)
}

// TestParsePortfolio_EqualSplit tests that unweighted entries share the
// remaining allocation
func TestParsePortfolio_EqualSplit(t *testing.T) {
	items, err := ParsePortfolio("SCHD:50,O,JEPI")
	require.NoError(t, err)
	assert.Equal(t, 50.0, items[0].Weight)
	assert.Equal(t, 25.0, items[1].Weight)
	assert.Equal(t, 25.0, items[2].Weight)
}

// TestParsePortfolio_Errors tests rejection of malformed specs
func TestParsePortfolio_Errors(t *testing.T) {
	for _, spec := range []string{"", ",", ":60", "SCHD:abc", "SCHD:150", "SCHD:-5"} {
		_, err := ParsePortfolio(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

// TestResolveConfigPath tests the configs/ directory default
func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "", ResolveConfigPath(""))
	assert.Equal(t, "configs/dividend.json", ResolveConfigPath("dividend"))
	assert.Equal(t, "configs/dividend.json", ResolveConfigPath("dividend.json"))
	assert.Equal(t, "my/path.json", ResolveConfigPath("my/path.json"))
}
