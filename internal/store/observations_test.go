package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	obs := []Observation{
		{Language: "rust", Distance: 0.3},
		{Language: "rust", Distance: 0.5},
		{Language: "go", Distance: 0.7},
	}
	require.NoError(t, s.RecordObservations(ctx, obs))

	distances, err := s.ReadObservations(ctx, "rust", 0)
	require.NoError(t, err)
	assert.Len(t, distances, 2)

	count, err := s.CountObservations(ctx, "rust")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err := s.CountObservations(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	langs, err := s.ObservationLanguages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, langs)
}

func TestPruneObservations(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordObservations(ctx, []Observation{{Language: "go", Distance: 0.4}}))

	// Future cutoff removes everything.
	removed, err := s.PruneObservations(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := s.CountObservations(ctx, "go")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCalibrationRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	missing, err := s.GetCalibration(ctx, "rust")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.PutCalibration(ctx, Calibration{
		Language:      "rust",
		MaxDistance:   0.9,
		MinSimilarity: 0.85,
		SampleCount:   600,
	}))

	c, err := s.GetCalibration(ctx, "rust")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.InDelta(t, 0.9, c.MaxDistance, 1e-9)
	assert.InDelta(t, 0.85, c.MinSimilarity, 1e-9)
	assert.Equal(t, 600, c.SampleCount)
	assert.NotZero(t, c.CalibratedAt)

	// Replacing updates in place; language is unique.
	require.NoError(t, s.PutCalibration(ctx, Calibration{Language: "rust", MaxDistance: 1.1, MinSimilarity: 0.5, SampleCount: 700}))
	all, err := s.ListCalibrations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 1.1, all[0].MaxDistance, 1e-9)
}

func TestStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Files)
	assert.Zero(t, stats.Symbols)
	assert.NotZero(t, stats.DBSizeBytes)
}
