package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateEstimateReturnsRawObservationOnFirstSample(t *testing.T) {
	got := updateEstimate(100, 10, 9, 42)
	assert.Equal(t, 42.0, got)
}

func TestUpdateEstimateWeightsPriorMoreAsObservationsAccumulate(t *testing.T) {
	early := updateEstimate(50, 10, 5, 100)
	late := updateEstimate(50, 10, 1, 100)

	// Further along (fewer remaining => more elapsed), the prior should be
	// weighted more heavily, pulling the blended result closer to the prior.
	assert.Less(t, late, early)
	assert.Greater(t, early, 50.0)
}

func TestMetricsStartRejectsDoubleStart(t *testing.T) {
	m := NewMetrics(10)
	require.NoError(t, m.Start(3, 0))
	err := m.Start(3, 0)
	require.Error(t, err)
}

func TestMetricsFixedSampleStopsAtExactSize(t *testing.T) {
	m := NewMetrics(10)
	require.NoError(t, m.Start(1, 3))

	m.StartDate("2026-01-01", -1)
	m.StartGroup("a")

	assert.False(t, m.NextPhoto(false))
	assert.False(t, m.NextPhoto(false))
	assert.True(t, m.NextPhoto(false))
	assert.Equal(t, 3, m.TotalPhotos())
}

func TestMetricsMarkInvalidDoesNotCountTowardSampleSize(t *testing.T) {
	m := NewMetrics(10)
	require.NoError(t, m.Start(1, 2))
	m.StartDate("2026-01-01", -1)
	m.StartGroup("a")

	assert.False(t, m.NextPhoto(false))
	m.MarkInvalid()
	assert.Equal(t, 0, m.TotalPhotos())
	assert.False(t, m.NextPhoto(false))
	assert.True(t, m.NextPhoto(false))
}

func TestMetricsRemainingPhotosTracksEstimateMinusObserved(t *testing.T) {
	m := NewMetrics(10)
	require.NoError(t, m.Start(2, 5))
	before := m.RemainingPhotos()
	m.StartDate("2026-01-01", -1)
	m.StartGroup("a")
	m.NextPhoto(false)
	after := m.RemainingPhotos()
	assert.Equal(t, before-1, after)
}
