package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

// ChunkRow is a persisted chunk joined with its file's path and language.
type ChunkRow struct {
	ID       int64
	FileID   int64
	Path     string
	Language string
	types.Chunk
	HasEmbedding bool
}

// ChunkDistance pairs a chunk id with its cosine distance to a query
// vector, smallest first.
type ChunkDistance struct {
	ChunkID  int64
	Distance float64
}

// ChunksByFile returns every chunk of a file ordered by position.
func (s *Store) ChunksByFile(ctx context.Context, fileID int64) ([]ChunkRow, error) {
	return s.scanChunks(ctx, `
		SELECT c.id, c.file_id, f.path, COALESCE(f.language, ''),
		       c.content, c.line_start, c.line_end, c.context_label,
		       c.embedding IS NOT NULL
		FROM chunks c JOIN files f ON c.file_id = f.id
		WHERE c.file_id = ?
		ORDER BY c.line_start`, fileID)
}

// ChunksByIDs returns the chunk rows for the given ids, in no particular
// order.
func (s *Store) ChunksByIDs(ctx context.Context, ids []int64) ([]ChunkRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.scanChunks(ctx, `
		SELECT c.id, c.file_id, f.path, COALESCE(f.language, ''),
		       c.content, c.line_start, c.line_end, c.context_label,
		       c.embedding IS NOT NULL
		FROM chunks c JOIN files f ON c.file_id = f.id
		WHERE c.id IN (`+placeholders+`)`, args...)
}

func (s *Store) scanChunks(ctx context.Context, query string, args ...any) ([]ChunkRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]ChunkRow, 0)
	for rows.Next() {
		var r ChunkRow
		if err := rows.Scan(&r.ID, &r.FileID, &r.Path, &r.Language,
			&r.Content, &r.StartLine, &r.EndLine, &r.ContextLabel, &r.HasEmbedding); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ChunkEmbedding returns a chunk's stored vector, or nil when absent.
func (s *Store) ChunkEmbedding(ctx context.Context, chunkID int64) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT embedding FROM chunks WHERE id = ?", chunkID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	return deserializeVector(blob), nil
}

// SearchSimilarChunks returns the topK chunks nearest to the query vector
// by cosine distance, smallest first. Chunks without an embedding are
// ignored. An optional language narrows candidates to one language.
func (s *Store) SearchSimilarChunks(ctx context.Context, vector []float32, topK int, lang string) ([]ChunkDistance, error) {
	if topK <= 0 {
		return nil, nil
	}
	if VectorExtensionAvailable {
		return s.searchSimilarVec(ctx, vector, topK, lang)
	}
	return s.searchSimilarFallback(ctx, vector, topK, lang)
}

// searchSimilarVec delegates the KNN scan to the sqlite-vec vec0 table.
func (s *Store) searchSimilarVec(ctx context.Context, vector []float32, topK int, lang string) ([]ChunkDistance, error) {
	// vec0 KNN cannot join mid-scan; over-fetch when a language filter
	// will discard candidates afterwards.
	k := topK
	if lang != "" {
		k = topK * 4
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, distance FROM chunks_vec
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance`, serializeVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]ChunkDistance, 0, k)
	for rows.Next() {
		var r ChunkDistance
		if err := rows.Scan(&r.ChunkID, &r.Distance); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if lang != "" {
		results, err = s.filterByLanguage(ctx, results, lang)
		if err != nil {
			return nil, err
		}
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) filterByLanguage(ctx context.Context, candidates []ChunkDistance, lang string) ([]ChunkDistance, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ChunkID
	}
	chunks, err := s.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	accept := make(map[int64]bool, len(chunks))
	for _, c := range chunks {
		if c.Language == lang {
			accept[c.ID] = true
		}
	}
	out := candidates[:0]
	for _, c := range candidates {
		if accept[c.ChunkID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// searchSimilarFallback computes cosine distance in Go for pure-Go builds.
func (s *Store) searchSimilarFallback(ctx context.Context, vector []float32, topK int, lang string) ([]ChunkDistance, error) {
	query := `
		SELECT c.id, c.embedding
		FROM chunks c JOIN files f ON c.file_id = f.id
		WHERE c.embedding IS NOT NULL`
	args := []any{}
	if lang != "" {
		query += " AND f.language = ?"
		args = append(args, lang)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]ChunkDistance, 0, 256)
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		v := deserializeVector(blob)
		if len(v) != len(vector) {
			continue
		}
		results = append(results, ChunkDistance{ChunkID: id, Distance: 1.0 - cosineSimilarity(vector, v)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// serializeVector converts a float32 slice to a little-endian byte blob,
// the layout sqlite-vec expects.
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice.
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
