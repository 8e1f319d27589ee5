package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/pland/internal/config"
)

func TestNew(t *testing.T) {
	timeout := config.Duration(10 * time.Second)

	s, err := New(config.SearchConfig{Engine: "duckduckgo", MaxResults: 5, RatePerSecond: 1}, timeout, nil)
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGo{}, s)

	s, err = New(config.SearchConfig{Engine: "github", MaxResults: 5, RatePerSecond: 1}, timeout, nil)
	require.NoError(t, err)
	assert.IsType(t, &GitHub{}, s)

	_, err = New(config.SearchConfig{Engine: "altavista", MaxResults: 5, RatePerSecond: 1}, timeout, nil)
	assert.Error(t, err)
}
