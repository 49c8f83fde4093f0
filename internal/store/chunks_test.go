package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantiq/semantiq/pkg/types"
)

// unitVector builds a one-hot unit vector.
func unitVector(hot int) []float32 {
	v := make([]float32, EmbeddingDim)
	v[hot] = 1
	return v
}

func storeChunkWithEmbedding(t *testing.T, s *Store, path, lang string, emb []float32) int64 {
	t.Helper()
	f := testFile(path)
	f.Language = lang
	fileID, err := s.ReplaceFile(context.Background(), f, nil,
		[]types.Chunk{{Content: "chunk of " + path, StartLine: 1, EndLine: 10, ContextLabel: "code block"}},
		[][]float32{emb}, nil)
	require.NoError(t, err)

	chunks, err := s.ChunksByFile(context.Background(), fileID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	return chunks[0].ID
}

func TestSearchSimilarChunksOrdersByDistance(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	nearID := storeChunkWithEmbedding(t, s, "src/near.go", "go", unitVector(0))
	_ = storeChunkWithEmbedding(t, s, "src/far.go", "go", unitVector(1))

	neighbors, err := s.SearchSimilarChunks(ctx, unitVector(0), 10, "")
	require.NoError(t, err)
	require.Len(t, neighbors, 2)

	assert.Equal(t, nearID, neighbors[0].ChunkID)
	assert.InDelta(t, 0.0, neighbors[0].Distance, 1e-6)
	assert.InDelta(t, 1.0, neighbors[1].Distance, 1e-6)
}

func TestSearchSimilarChunksLanguageFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	goID := storeChunkWithEmbedding(t, s, "src/a.go", "go", unitVector(0))
	_ = storeChunkWithEmbedding(t, s, "src/a.rs", "rust", unitVector(0))

	neighbors, err := s.SearchSimilarChunks(ctx, unitVector(0), 10, "go")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, goID, neighbors[0].ChunkID)
}

func TestSearchSimilarChunksIgnoresUnembedded(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/plain.go"), nil,
		[]types.Chunk{{Content: "no vector", StartLine: 1, EndLine: 5, ContextLabel: "code block"}},
		nil, nil)
	require.NoError(t, err)

	neighbors, err := s.SearchSimilarChunks(ctx, unitVector(0), 10, "")
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestStoredEmbeddingsKeepUnitNorm(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := make([]float32, EmbeddingDim)
	for i := range v {
		v[i] = 1
	}
	norm := float32(math.Sqrt(float64(EmbeddingDim)))
	for i := range v {
		v[i] /= norm
	}

	chunkID := storeChunkWithEmbedding(t, s, "src/n.go", "go", v)

	got, err := s.ChunkEmbedding(ctx, chunkID)
	require.NoError(t, err)
	require.Len(t, got, EmbeddingDim)

	var sum float64
	for _, x := range got {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 0.01)
}

func TestVectorSerializationRoundTrip(t *testing.T) {
	v := []float32{0.25, -1.5, 3.75, 0}
	got := deserializeVector(serializeVector(v))
	assert.Equal(t, v, got)
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity(a, []float32{-1, 0}), 1e-9)
}
