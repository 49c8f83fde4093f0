package store

import (
	"context"
	"fmt"
	"time"
)

// Observation is one recorded semantic-distance sample.
type Observation struct {
	Language string
	Distance float64
}

// RecordObservations appends a batch of distance observations.
func (s *Store) RecordObservations(ctx context.Context, observations []Observation) error {
	if len(observations) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, obs := range observations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO distance_observations (language, distance, created_at) VALUES (?, ?, ?)",
			obs.Language, obs.Distance, now); err != nil {
			return fmt.Errorf("record observation: %w", err)
		}
	}
	return tx.Commit()
}

// ReadObservations returns up to limit distances for a language, newest
// first. limit <= 0 means all.
func (s *Store) ReadObservations(ctx context.Context, language string, limit int) ([]float64, error) {
	query := "SELECT distance FROM distance_observations WHERE language = ? ORDER BY created_at DESC"
	args := []any{language}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	distances := make([]float64, 0)
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		distances = append(distances, d)
	}
	return distances, rows.Err()
}

// CountObservations returns the number of stored observations for a
// language, or for all languages when language is "".
func (s *Store) CountObservations(ctx context.Context, language string) (int, error) {
	var count int
	var err error
	if language == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM distance_observations").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM distance_observations WHERE language = ?", language).Scan(&count)
	}
	return count, err
}

// ObservationLanguages lists every language with at least one observation.
func (s *Store) ObservationLanguages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT language FROM distance_observations ORDER BY language")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	langs := make([]string, 0)
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}

// PruneObservations deletes observations older than the cutoff and returns
// how many were removed.
func (s *Store) PruneObservations(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM distance_observations WHERE created_at < ?", olderThan.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
