package store

import (
	"context"
	"database/sql"
	"time"
)

// GlobalLanguage is the sentinel row holding thresholds derived from all
// observations regardless of language.
const GlobalLanguage = "_global_"

// Calibration is a persisted per-language threshold row.
type Calibration struct {
	Language      string
	MaxDistance   float64
	MinSimilarity float64
	SampleCount   int
	CalibratedAt  int64
}

// PutCalibration writes or replaces the threshold row for a language.
func (s *Store) PutCalibration(ctx context.Context, c Calibration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO threshold_calibration
			(language, max_distance, min_similarity, sample_count, calibrated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.Language, c.MaxDistance, c.MinSimilarity, c.SampleCount, time.Now().Unix())
	return err
}

// GetCalibration returns the threshold row for a language, or nil when the
// language has never been calibrated.
func (s *Store) GetCalibration(ctx context.Context, language string) (*Calibration, error) {
	var c Calibration
	err := s.db.QueryRowContext(ctx, `
		SELECT language, max_distance, min_similarity, sample_count, calibrated_at
		FROM threshold_calibration WHERE language = ?`, language).
		Scan(&c.Language, &c.MaxDistance, &c.MinSimilarity, &c.SampleCount, &c.CalibratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCalibrations returns every threshold row ordered by language.
func (s *Store) ListCalibrations(ctx context.Context) ([]Calibration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT language, max_distance, min_similarity, sample_count, calibrated_at
		FROM threshold_calibration ORDER BY language`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]Calibration, 0)
	for rows.Next() {
		var c Calibration
		if err := rows.Scan(&c.Language, &c.MaxDistance, &c.MinSimilarity, &c.SampleCount, &c.CalibratedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
