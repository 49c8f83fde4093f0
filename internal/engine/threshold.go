package engine

import (
	"context"

	"github.com/semantiq/semantiq/internal/store"
)

// Compile-time defaults used before any calibration exists; permissive so
// an uncalibrated index never hides results.
const (
	defaultMaxDistance   = 1.0
	defaultMinSimilarity = 0.0
)

// thresholds resolves the semantic cut-offs for a language through the
// cascade: per-language row, then the _global_ sentinel, then defaults.
func (e *Engine) thresholds(ctx context.Context, lang string) (maxDistance, minSimilarity float64) {
	if lang != "" {
		if c, err := e.store.GetCalibration(ctx, lang); err == nil && c != nil {
			return c.MaxDistance, c.MinSimilarity
		}
	}
	if c, err := e.store.GetCalibration(ctx, store.GlobalLanguage); err == nil && c != nil {
		return c.MaxDistance, c.MinSimilarity
	}
	return defaultMaxDistance, defaultMinSimilarity
}
