package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCostAccumulates(t *testing.T) {
	stats, err := NewStatsService("0.30", "2.50")
	require.NoError(t, err)

	stats.RecordCompletion(1_000_000, 0)
	stats.RecordCompletion(0, 2_000_000)
	stats.RecordStream(7)

	snap := stats.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.StreamRequests)
	assert.Equal(t, int64(2), snap.CompletionRequests)
	assert.Equal(t, int64(7), snap.Fragments)
	assert.Equal(t, int64(1_000_000), snap.PromptTokens)
	assert.Equal(t, int64(2_000_000), snap.CompletionTokens)
	// 1M prompt tokens at $0.30/M plus 2M completion tokens at $2.50/M.
	assert.Equal(t, "5.300000", snap.CostUSD)
}

func TestStatsRejectsBadPrices(t *testing.T) {
	_, err := NewStatsService("not-a-number", "1")
	assert.Error(t, err)

	_, err = NewStatsService("1", "")
	assert.Error(t, err)
}

func TestStatsZeroUsageCostsNothing(t *testing.T) {
	stats, err := NewStatsService("0.30", "2.50")
	require.NoError(t, err)
	assert.Equal(t, "0.000000", stats.Snapshot().CostUSD)
}
