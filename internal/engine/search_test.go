package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

type fixtureFile struct {
	path     string
	lang     string
	modified int64
	symbols  []types.Symbol
	chunk    string
	content  string
}

func setupEngine(t *testing.T, files []fixtureFile, matcher *fakeMatcher) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.InitOrMigrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	emb := &fakeEmbedder{}
	ctx := context.Background()

	if matcher == nil {
		matcher = &fakeMatcher{files: map[string]string{}}
	}
	for _, f := range files {
		var chunks []types.Chunk
		var embeddings [][]float32
		if f.chunk != "" {
			chunks = []types.Chunk{{Content: f.chunk, StartLine: 1, EndLine: 10, ContextLabel: "code block"}}
			vectors, err := emb.EmbedBatch(ctx, []string{f.chunk})
			require.NoError(t, err)
			embeddings = vectors
		}
		modified := f.modified
		if modified == 0 {
			modified = 1600000000
		}
		_, err := s.ReplaceFile(ctx, &store.File{
			Path:        f.path,
			ContentHash: "hash-" + f.path,
			SizeBytes:   int64(len(f.content)),
			ModifiedAt:  modified,
			Language:    f.lang,
		}, f.symbols, chunks, embeddings, nil)
		require.NoError(t, err)

		if f.content != "" {
			matcher.files[f.path] = f.content
		}
	}

	eng := New(Config{Store: s, Embedder: emb, Matcher: matcher, Root: "/project"})
	return eng, s
}

// rateLimitFixture mirrors the canonical rate-limiting project: a limiter,
// a throttle helper, and a test file.
func rateLimitFixture() []fixtureFile {
	return []fixtureFile{
		{
			path: "src/rate_limiter.rs", lang: "rust",
			modified: time.Now().Unix(),
			symbols: []types.Symbol{{
				Name: "enforce_rate_limit", Kind: types.KindFunction,
				StartLine: 1, EndLine: 10,
				Signature: "fn enforce_rate_limit(key: &str) -> bool",
			}},
			chunk:   "fn enforce_rate_limit rate limit",
			content: "fn enforce_rate_limit(key: &str) -> bool {\n    true\n}",
		},
		{
			path: "src/api/throttle.rs", lang: "rust",
			symbols: []types.Symbol{{
				Name: "throttle", Kind: types.KindFunction,
				StartLine: 1, EndLine: 8,
				Signature: "fn throttle(key: &str)",
			}},
			chunk:   "fn throttle rate quota",
			content: "fn throttle(key: &str) {\n}",
		},
		{
			path: "tests/rate_limit_test.rs", lang: "rust",
			symbols: []types.Symbol{{
				Name: "test_rate_limit", Kind: types.KindFunction,
				StartLine: 1, EndLine: 6,
			}},
			chunk:   "fn test rate limit asserts checks ok",
			content: "fn test_rate_limit() {\n    assert!(enforce_rate_limit(\"k\"));\n}",
		},
	}
}

func TestSearchRateLimitScenario(t *testing.T) {
	eng, _ := setupEngine(t, rateLimitFixture(), nil)

	results, err := eng.Search(context.Background(), "rate limit", &SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 3)

	assert.Equal(t, "src/rate_limiter.rs", results[0].Path)
	assert.Equal(t, "src/api/throttle.rs", results[1].Path)
	assert.Equal(t, "tests/rate_limit_test.rs", results[2].Path)
	assert.GreaterOrEqual(t, results[0].Score, 0.6)

	for _, r := range results {
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.GreaterOrEqual(t, r.Score, 0.0)
	}
}

func TestSearchSynonymExpansion(t *testing.T) {
	eng, _ := setupEngine(t, rateLimitFixture(), nil)

	// "throttle" alone must still surface the limiter via the synonym table.
	results, err := eng.Search(context.Background(), "throttle", &SearchOptions{Limit: 10, MinScore: 0.05})
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, "src/api/throttle.rs")
	assert.Contains(t, paths, "src/rate_limiter.rs")
}

func TestSearchRespectsLimit(t *testing.T) {
	eng, _ := setupEngine(t, rateLimitFixture(), nil)

	results, err := eng.Search(context.Background(), "rate limit", &SearchOptions{Limit: 1, MinScore: 0.05})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchInvalidInput(t *testing.T) {
	eng, _ := setupEngine(t, nil, nil)

	_, err := eng.Search(context.Background(), "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	long := make([]byte, maxQueryLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = eng.Search(context.Background(), string(long), nil)
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = eng.Search(context.Background(), "ok", &SearchOptions{MinScore: 1.5})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestSearchAdversarialFilters(t *testing.T) {
	eng, _ := setupEngine(t, rateLimitFixture(), nil)

	for _, hostile := range []string{`%`, `_`, `'`, `rs' OR '1'='1`, `%';DROP TABLE files;--`} {
		_, err := eng.Search(context.Background(), "rate limit", &SearchOptions{
			Limit:       5,
			FileTypes:   []string{hostile},
			SymbolKinds: []string{hostile},
		})
		assert.NoError(t, err, "filter %q must not error", hostile)
	}
}

func TestSearchFileTypeFilter(t *testing.T) {
	files := append(rateLimitFixture(), fixtureFile{
		path: "src/limiter.py", lang: "python",
		symbols: []types.Symbol{{Name: "enforce_rate_limit", Kind: types.KindFunction, StartLine: 1, EndLine: 8}},
		content: "def enforce_rate_limit(key):\n    return True",
	})
	eng, _ := setupEngine(t, files, nil)

	results, err := eng.Search(context.Background(), "rate limit", &SearchOptions{
		Limit: 10, MinScore: 0.05, FileTypes: []string{"py"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, strings.HasSuffix(r.Path, ".py"), "unexpected path %s", r.Path)
	}
}

func TestSearchWithoutEmbedderStillWorks(t *testing.T) {
	files := rateLimitFixture()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.InitOrMigrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	matcher := &fakeMatcher{files: map[string]string{}}
	for _, f := range files {
		_, err := s.ReplaceFile(context.Background(), &store.File{
			Path: f.path, ContentHash: "h" + f.path, ModifiedAt: 1600000000, Language: f.lang,
		}, f.symbols, nil, nil, nil)
		require.NoError(t, err)
		matcher.files[f.path] = f.content
	}

	// No embedder at all: semantic source contributes nothing, call succeeds.
	eng := New(Config{Store: s, Matcher: matcher, Root: "/project"})
	results, err := eng.Search(context.Background(), "rate limit", &SearchOptions{Limit: 10, MinScore: 0.05})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchSlowSourceDoesNotBlock(t *testing.T) {
	files := rateLimitFixture()
	matcher := &fakeMatcher{files: map[string]string{}, delay: 10 * time.Second}
	eng, _ := setupEngine(t, files, matcher)

	start := time.Now()
	results, err := eng.Search(context.Background(), "rate limit", &SearchOptions{Limit: 10, MinScore: 0.05})
	elapsed := time.Since(start)

	// The text source times out at its own 2 s budget; the call succeeds
	// with the other sources inside the 5 s wall clock.
	require.NoError(t, err)
	assert.Less(t, elapsed, queryBudget)
	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEmpty(t, r.Path)
	}
}

func TestFusionStability(t *testing.T) {
	eng, _ := setupEngine(t, rateLimitFixture(), nil)
	ctx := context.Background()
	opts := &SearchOptions{Limit: 10, MinScore: 0.05}
	require.NoError(t, opts.normalize())

	bySource := map[source][]candidate{
		sourceSymbol: {{path: "a.rs", raw: 1.0}, {path: "b.rs", raw: 0.8}},
		sourceText:   {{path: "b.rs", raw: 0.6}, {path: "c.rs", raw: 0.6}},
	}
	baseline := eng.fuse(ctx, bySource, "q", opts)

	// An additional source with no results must not change the ordering.
	bySource[source("empty")] = nil
	withEmpty := eng.fuse(ctx, bySource, "q", opts)

	require.Equal(t, len(baseline), len(withEmpty))
	for i := range baseline {
		assert.Equal(t, baseline[i].Path, withEmpty[i].Path)
		assert.InDelta(t, baseline[i].Score, withEmpty[i].Score, 1e-9)
	}
}

func TestTestPathDeboost(t *testing.T) {
	assert.True(t, isTestPath("tests/rate_limit_test.rs"))
	assert.True(t, isTestPath("src/__tests__/app.test.ts"))
	assert.True(t, isTestPath("pkg/store/store_test.go"))
	assert.False(t, isTestPath("src/rate_limiter.rs"))
	assert.False(t, isTestPath("src/contest.rs"))

	assert.True(t, isTestQuery("how is rate limiting tested"))
	assert.False(t, isTestQuery("rate limit"))
}
