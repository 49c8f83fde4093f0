package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantiq/semantiq/pkg/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.InitOrMigrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testFile(path string) *File {
	return &File{
		Path:        path,
		ContentHash: "deadbeef",
		SizeBytes:   100,
		ModifiedAt:  1700000000,
		Language:    "go",
	}
}

func TestInitOrMigrateFreshDB(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.GetMeta(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(SchemaVersion), v)

	v, err = s.GetMeta(ctx, "parser_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(ParserVersion), v)
}

func TestInitOrMigrateIdempotent(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.InitOrMigrate(context.Background()))
}

func TestInitOrMigrateVersionBumpWipes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/a.go"),
		[]types.Symbol{{Name: "A", Kind: types.KindFunction, StartLine: 1, EndLine: 5}},
		[]types.Chunk{{Content: "func A() {}", StartLine: 1, EndLine: 5, ContextLabel: "function A"}},
		nil,
		[]types.Dependency{{Target: "fmt", Kind: types.DepImport}})
	require.NoError(t, err)

	// Simulate an old binary having written the rows.
	require.NoError(t, s.SetMeta(ctx, "parser_version", strconv.Itoa(ParserVersion-1)))

	err = s.InitOrMigrate(ctx)
	assert.ErrorIs(t, err, types.ErrNeedsFullReindex)

	files, err := s.ListFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files, "content rows should be wiped")

	// Meta survives and is bumped back to current.
	v, err := s.GetMeta(ctx, "parser_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(ParserVersion), v)
}

func TestReplaceFileRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	symbols := []types.Symbol{
		{Name: "enforce_rate_limit", Kind: types.KindFunction, StartLine: 3, EndLine: 12, Signature: "fn enforce_rate_limit(key: &str) -> bool"},
		{Name: "Limiter", Kind: types.KindStruct, StartLine: 14, EndLine: 20},
	}
	chunks := []types.Chunk{
		{Content: "fn enforce_rate_limit...", StartLine: 3, EndLine: 12, ContextLabel: "function enforce_rate_limit"},
	}
	deps := []types.Dependency{
		{Target: "std::collections", Kind: types.DepImport},
	}

	f := testFile("src/rate_limiter.rs")
	f.Language = "rust"
	fileID, err := s.ReplaceFile(ctx, f, symbols, chunks, nil, deps)
	require.NoError(t, err)
	assert.Greater(t, fileID, int64(0))
	assert.Equal(t, ParserVersion, f.ParserVersion)

	gotSymbols, err := s.SymbolsByFile(ctx, fileID)
	require.NoError(t, err)
	require.Len(t, gotSymbols, 2)
	assert.Equal(t, "enforce_rate_limit", gotSymbols[0].Name)
	assert.Equal(t, types.KindFunction, gotSymbols[0].Kind)
	assert.Equal(t, 3, gotSymbols[0].StartLine)

	gotChunks, err := s.ChunksByFile(ctx, fileID)
	require.NoError(t, err)
	require.Len(t, gotChunks, 1)
	assert.Equal(t, "function enforce_rate_limit", gotChunks[0].ContextLabel)
	assert.Equal(t, "rust", gotChunks[0].Language)
	assert.False(t, gotChunks[0].HasEmbedding)

	gotDeps, err := s.DependenciesByFile(ctx, fileID)
	require.NoError(t, err)
	require.Len(t, gotDeps, 1)
	assert.Equal(t, "std::collections", gotDeps[0].Target)
}

func TestReplaceFileReplacesOldRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := testFile("src/a.go")
	_, err := s.ReplaceFile(ctx, f,
		[]types.Symbol{{Name: "Old", Kind: types.KindFunction, StartLine: 1, EndLine: 5}},
		nil, nil, nil)
	require.NoError(t, err)

	f2 := testFile("src/a.go")
	f2.ContentHash = "cafebabe"
	fileID, err := s.ReplaceFile(ctx, f2,
		[]types.Symbol{{Name: "New", Kind: types.KindFunction, StartLine: 1, EndLine: 5}},
		nil, nil, nil)
	require.NoError(t, err)

	symbols, err := s.SymbolsByFile(ctx, fileID)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "New", symbols[0].Name)

	// The old symbol must be gone from FTS as well.
	rows, err := s.SearchSymbols(ctx, "Old", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteFileCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	emb := make([]float32, EmbeddingDim)
	emb[0] = 1
	fileID, err := s.ReplaceFile(ctx, testFile("src/gone.go"),
		[]types.Symbol{{Name: "Gone", Kind: types.KindFunction, StartLine: 1, EndLine: 5}},
		[]types.Chunk{{Content: "x", StartLine: 1, EndLine: 5, ContextLabel: "function Gone"}},
		[][]float32{emb},
		[]types.Dependency{{Target: "fmt", Kind: types.DepImport}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFile(ctx, "src/gone.go"))

	symbols, err := s.SymbolsByFile(ctx, fileID)
	require.NoError(t, err)
	assert.Empty(t, symbols)

	chunks, err := s.ChunksByFile(ctx, fileID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	deps, err := s.DependenciesByFile(ctx, fileID)
	require.NoError(t, err)
	assert.Empty(t, deps)

	// No dangling FTS entries.
	rows, err := s.SearchSymbols(ctx, "Gone", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// No dangling vectors.
	neighbors, err := s.SearchSimilarChunks(ctx, emb, 10, "")
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestSearchSymbolsTokenized(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/rate_limiter.rs"),
		[]types.Symbol{{Name: "enforce_rate_limit", Kind: types.KindFunction, StartLine: 1, EndLine: 10}},
		nil, nil, nil)
	require.NoError(t, err)

	// The FTS tokenizer splits on underscores, so bare tokens match.
	rows, err := s.SearchSymbols(ctx, "rate limit", 10)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "enforce_rate_limit", rows[0].Name)
}

func TestSearchSymbolsAdversarialInput(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/x.go"),
		[]types.Symbol{{Name: "Safe", Kind: types.KindFunction, StartLine: 1, EndLine: 5}},
		nil, nil, nil)
	require.NoError(t, err)

	// None of these may error or match everything.
	for _, q := range []string{`"; DROP TABLE symbols; --`, `%`, `_`, `'`, `a" OR "b`, `NEAR(x)`, `*`} {
		_, err := s.SearchSymbols(ctx, q, 10)
		assert.NoError(t, err, "query %q must not error", q)
	}

	rows, err := s.SearchSymbols(ctx, "Safe", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "table must still exist")
}

func TestGetDependents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/a.ts"), nil, nil, nil,
		[]types.Dependency{{Target: "./b", Kind: types.DepImport}})
	require.NoError(t, err)
	_, err = s.ReplaceFile(ctx, testFile("src/unrelated.ts"), nil, nil, nil,
		[]types.Dependency{{Target: "./zzz", Kind: types.DepImport}})
	require.NoError(t, err)

	deps, err := s.GetDependents(ctx, "src/b.ts")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "./b", deps[0].Target)
}

func TestGetDependentsEscapesLike(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceFile(ctx, testFile("src/a.ts"), nil, nil, nil,
		[]types.Dependency{{Target: "./real", Kind: types.DepImport}})
	require.NoError(t, err)

	// A stem made of wildcards must not match everything.
	deps, err := s.GetDependents(ctx, "src/%.ts")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestFindFilesByStem(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"src/b.ts", "src/deep/b.ts", "src/bb.ts"} {
		_, err := s.ReplaceFile(ctx, testFile(p), nil, nil, nil, nil)
		require.NoError(t, err)
	}

	files, err := s.FindFilesByStem(ctx, "b")
	require.NoError(t, err)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"src/b.ts", "src/deep/b.ts"}, paths)
}
