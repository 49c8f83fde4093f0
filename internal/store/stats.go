package store

import "context"

// Stats summarizes the index contents and calibration state.
type Stats struct {
	Files          int
	Symbols        int
	Chunks         int
	EmbeddedChunks int
	Dependencies   int
	Observations   int
	DBSizeBytes    int64
	Calibrations   []Calibration
}

// Stats counts rows by kind and reports database size and calibration
// state.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM files", &stats.Files},
		{"SELECT COUNT(*) FROM symbols", &stats.Symbols},
		{"SELECT COUNT(*) FROM chunks", &stats.Chunks},
		{"SELECT COUNT(*) FROM chunks WHERE embedding IS NOT NULL", &stats.EmbeddedChunks},
		{"SELECT COUNT(*) FROM dependencies", &stats.Dependencies},
		{"SELECT COUNT(*) FROM distance_observations", &stats.Observations},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DBSizeBytes = pageCount * pageSize
		}
	}

	calibrations, err := s.ListCalibrations(ctx)
	if err != nil {
		return nil, err
	}
	stats.Calibrations = calibrations

	return stats, nil
}
