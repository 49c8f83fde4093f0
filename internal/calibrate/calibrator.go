package calibrate

import (
	"context"
	"fmt"
	"time"

	"github.com/semantiq/semantiq/internal/store"
)

const (
	// MinSamples is the observation count required before a language (or
	// the global sentinel) can be calibrated.
	MinSamples = 500
	// maxObservationAge bounds how far back calibration looks; older
	// observations are pruned when calibration runs.
	maxObservationAge = 30 * 24 * time.Hour
)

// Result describes one calibration outcome.
type Result struct {
	Language      string
	MaxDistance   float64
	MinSimilarity float64
	SampleCount   int
	Applied       bool
	Message       string
}

// Calibrator derives per-language distance thresholds from recorded
// observations: max_distance from the 90th percentile, min_similarity from
// one minus the 10th percentile.
type Calibrator struct {
	store *store.Store
}

// New creates a calibrator over the given store.
func New(s *store.Store) *Calibrator {
	return &Calibrator{store: s}
}

// CalibrateLanguage computes thresholds for one language. With dryRun set
// the proposed values are returned without being written.
func (c *Calibrator) CalibrateLanguage(ctx context.Context, language string, dryRun bool) (*Result, error) {
	distances, err := c.store.ReadObservations(ctx, language, 0)
	if err != nil {
		return nil, fmt.Errorf("read observations for %s: %w", language, err)
	}

	if len(distances) < MinSamples {
		return &Result{
			Language: language,
			Applied:  false,
			Message:  fmt.Sprintf("insufficient samples for %s: %d < %d required", language, len(distances), MinSamples),
		}, nil
	}

	stats := ComputeStats(distances)
	result := &Result{
		Language:      language,
		MaxDistance:   stats.P90,
		MinSimilarity: DistanceToSimilarity(stats.P10),
		SampleCount:   stats.Count,
		Message:       fmt.Sprintf("calibrated %s with %d samples", language, stats.Count),
	}

	if dryRun {
		return result, nil
	}

	err = c.store.PutCalibration(ctx, store.Calibration{
		Language:      language,
		MaxDistance:   result.MaxDistance,
		MinSimilarity: result.MinSimilarity,
		SampleCount:   result.SampleCount,
	})
	if err != nil {
		return nil, fmt.Errorf("persist calibration for %s: %w", language, err)
	}
	result.Applied = true
	return result, nil
}

// CalibrateAll calibrates every observed language plus the global sentinel,
// pruning stale observations first (unless dry-running).
func (c *Calibrator) CalibrateAll(ctx context.Context, dryRun bool) ([]*Result, error) {
	if !dryRun {
		if _, err := c.store.PruneObservations(ctx, time.Now().Add(-maxObservationAge)); err != nil {
			return nil, fmt.Errorf("prune observations: %w", err)
		}
	}

	languages, err := c.store.ObservationLanguages(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(languages)+1)
	var all []float64

	for _, lang := range languages {
		result, err := c.CalibrateLanguage(ctx, lang, dryRun)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		distances, err := c.store.ReadObservations(ctx, lang, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, distances...)
	}

	global, err := c.calibrateDistances(ctx, store.GlobalLanguage, all, dryRun)
	if err != nil {
		return nil, err
	}
	results = append(results, global)

	return results, nil
}

// calibrateDistances runs the calibration math over an explicit distance
// set; used for the global sentinel.
func (c *Calibrator) calibrateDistances(ctx context.Context, language string, distances []float64, dryRun bool) (*Result, error) {
	if len(distances) < MinSamples {
		return &Result{
			Language: language,
			Applied:  false,
			Message:  fmt.Sprintf("insufficient samples for %s: %d < %d required", language, len(distances), MinSamples),
		}, nil
	}

	stats := ComputeStats(distances)
	result := &Result{
		Language:      language,
		MaxDistance:   stats.P90,
		MinSimilarity: DistanceToSimilarity(stats.P10),
		SampleCount:   stats.Count,
		Message:       fmt.Sprintf("calibrated %s with %d samples", language, stats.Count),
	}
	if dryRun {
		return result, nil
	}

	err := c.store.PutCalibration(ctx, store.Calibration{
		Language:      language,
		MaxDistance:   result.MaxDistance,
		MinSimilarity: result.MinSimilarity,
		SampleCount:   result.SampleCount,
	})
	if err != nil {
		return nil, err
	}
	result.Applied = true
	return result, nil
}
