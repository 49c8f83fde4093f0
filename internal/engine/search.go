package engine

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/semantiq/semantiq/internal/logger"
	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

// RRF fusion parameters. Weights sum to 1 so the normalized fused score
// lands in [0,1] before boosts.
const (
	rrfK = 60.0

	weightLexical  = 0.25
	weightSemantic = 0.40
	weightSymbol   = 0.20
	weightGraph    = 0.15
)

type source string

const (
	sourceSymbol   source = "symbol"
	sourceText     source = "text"
	sourceSemantic source = "semantic"
	sourceGraph    source = "graph"
)

var sourceWeights = map[source]float64{
	sourceSymbol:   weightSymbol,
	sourceText:     weightLexical,
	sourceSemantic: weightSemantic,
	sourceGraph:    weightGraph,
}

// candidate is one ranked item produced by a sub-search.
type candidate struct {
	path      string
	startLine int
	endLine   int
	snippet   string
	symbols   []string
	raw       float64 // per-source score, higher is better
}

type sourceResult struct {
	source     source
	candidates []candidate
	err        error
}

// Search runs the four sub-searches concurrently, fuses their rankings with
// reciprocal rank fusion, applies boosts and filters, and returns the top
// results. A slow source contributes nothing; only blowing the whole 5 s
// budget surfaces ErrTimeout, together with whatever was fused by then.
func (e *Engine) Search(ctx context.Context, query string, opts *SearchOptions) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", types.ErrInvalidInput)
	}
	if len(query) > maxQueryLen {
		return nil, fmt.Errorf("%w: query longer than %d chars", types.ErrInvalidInput, maxQueryLen)
	}
	if opts == nil {
		opts = &SearchOptions{}
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	budgetCtx, cancel := context.WithTimeout(ctx, queryBudget)
	defer cancel()

	terms := append([]string{query}, expandQuery(query)...)

	results := make(chan sourceResult, 4)
	launch := func(src source, fn func(context.Context) ([]candidate, error)) {
		go func() {
			srcCtx, srcCancel := context.WithTimeout(budgetCtx, sourceTimeout)
			defer srcCancel()
			candidates, err := fn(srcCtx)
			results <- sourceResult{source: src, candidates: candidates, err: err}
		}()
	}

	launch(sourceSymbol, func(ctx context.Context) ([]candidate, error) {
		return e.searchSymbols(ctx, terms, opts)
	})
	launch(sourceText, func(ctx context.Context) ([]candidate, error) {
		return e.searchText(ctx, terms, opts)
	})
	launch(sourceSemantic, func(ctx context.Context) ([]candidate, error) {
		return e.searchSemantic(ctx, query, opts)
	})
	launch(sourceGraph, func(ctx context.Context) ([]candidate, error) {
		return e.searchGraph(ctx, opts)
	})

	bySource := make(map[source][]candidate, 4)
	timedOut := false
collect:
	for i := 0; i < 4; i++ {
		select {
		case r := <-results:
			if r.err != nil {
				// A failed source contributes nothing; the call succeeds.
				logger.Debug("sub-search failed", "source", string(r.source), "error", r.err)
				continue
			}
			bySource[r.source] = r.candidates
		case <-budgetCtx.Done():
			timedOut = true
			break collect
		}
	}

	fusedResults := e.fuse(ctx, bySource, query, opts)

	logger.Debug("search completed",
		"query", query,
		"results", len(fusedResults),
		"elapsed_ms", time.Since(start).Milliseconds(),
		"semantic", e.SemanticEnabled(),
	)

	if timedOut {
		return fusedResults, fmt.Errorf("%w: query budget exceeded", types.ErrTimeout)
	}
	return fusedResults, nil
}

// fuse combines per-source rankings into one scored list.
func (e *Engine) fuse(ctx context.Context, bySource map[source][]candidate, query string, opts *SearchOptions) []types.SearchResult {
	type fused struct {
		score   float64
		semRaw  float64
		best    candidate
		symbols map[string]bool
	}
	items := make(map[string]*fused)

	for src, candidates := range bySource {
		w := sourceWeights[src]
		seen := make(map[string]bool, len(candidates))
		rank := 0
		for _, c := range candidates {
			if seen[c.path] {
				continue
			}
			seen[c.path] = true

			item := items[c.path]
			if item == nil {
				item = &fused{best: c, symbols: make(map[string]bool)}
				items[c.path] = item
			}
			item.score += w / (rrfK + float64(rank) + 1)
			if src == sourceSemantic {
				if c.raw > item.semRaw {
					item.semRaw = c.raw
				}
				// Semantic hits carry the most useful snippet and span.
				item.best = c
			}
			for _, s := range c.symbols {
				item.symbols[s] = true
			}
			rank++
		}
	}

	testQuery := isTestQuery(query)
	now := time.Now().Unix()

	out := make([]types.SearchResult, 0, len(items))
	for p, item := range items {
		// Normalize so a rank-0 hit in every source scores 1.0.
		score := item.score * (rrfK + 1)

		if f, err := e.store.GetFileByPath(ctx, p); err == nil {
			if now-f.ModifiedAt < 7*24*3600 {
				score *= 1.20
			}
		}
		if opts.ActiveFile != "" && path.Dir(p) == path.Dir(opts.ActiveFile) {
			score *= 1.15
		}
		if isTestPath(p) && !testQuery {
			score *= 0.70
		}
		if score > 1.0 {
			score = 1.0
		}
		if score < opts.MinScore {
			continue
		}

		symbols := make([]string, 0, len(item.symbols))
		for s := range item.symbols {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)

		out = append(out, types.SearchResult{
			Path:      p,
			Score:     score,
			Symbols:   symbols,
			StartLine: item.best.startLine,
			EndLine:   item.best.endLine,
			Snippet:   item.best.snippet,
		})
	}

	semRaw := make(map[string]float64, len(items))
	for p, item := range items {
		semRaw[p] = item.semRaw
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if semRaw[out[i].Path] != semRaw[out[j].Path] {
			return semRaw[out[i].Path] > semRaw[out[j].Path]
		}
		if len(out[i].Path) != len(out[j].Path) {
			return len(out[i].Path) < len(out[j].Path)
		}
		return out[i].Path < out[j].Path
	})

	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// searchSymbols runs the FTS source over every query variant.
func (e *Engine) searchSymbols(ctx context.Context, terms []string, opts *SearchOptions) ([]candidate, error) {
	pathByFile := make(map[int64]string)
	best := make(map[string]candidate)

	for _, term := range terms {
		rows, err := e.store.SearchSymbols(ctx, term, sourceCap)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if !opts.acceptsKind(row.Kind) {
				continue
			}
			p, ok := pathByFile[row.FileID]
			if !ok {
				f, err := e.store.GetFileByID(ctx, row.FileID)
				if err != nil {
					continue
				}
				p = f.Path
				pathByFile[row.FileID] = p
			}
			if !opts.acceptsPath(p) {
				continue
			}

			c := candidate{
				path:      p,
				startLine: row.StartLine,
				endLine:   row.EndLine,
				snippet:   row.Signature,
				symbols:   []string{row.Name},
				raw:       symbolScore(row.Name, row.Kind, term),
			}
			key := fmt.Sprintf("%s:%d", p, row.StartLine)
			if prev, ok := best[key]; !ok || c.raw > prev.raw {
				best[key] = c
			}
		}
	}

	candidates := make([]candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].raw > candidates[j].raw })
	if len(candidates) > sourceCap {
		candidates = candidates[:sourceCap]
	}
	return candidates, nil
}

// symbolScore ranks a symbol hit within the symbol source: exact name
// matches beat prefixes beat substrings, with a kind boost on top.
func symbolScore(name string, kind types.SymbolKind, term string) float64 {
	nameLower := strings.ToLower(name)
	termLower := strings.ToLower(term)

	var score float64
	switch {
	case nameLower == termLower:
		score = 1.0
	case strings.HasPrefix(nameLower, termLower):
		score = 0.85
	case strings.Contains(nameLower, termLower):
		score = 0.7
	default:
		score = 0.5
	}

	switch kind {
	case types.KindFunction, types.KindMethod:
		score *= 1.15
	case types.KindClass, types.KindStruct, types.KindTrait, types.KindInterface:
		score *= 1.1
	case types.KindEnum, types.KindType:
		score *= 1.05
	case types.KindConstant:
		score *= 0.95
	case types.KindVariable:
		score *= 0.9
	}

	score *= 1.0 + 1.0/(float64(len(name))+5.0)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// searchText runs the grep source: one case-insensitive regex over all
// query variants, walked with the shared exclusions.
func (e *Engine) searchText(ctx context.Context, terms []string, opts *SearchOptions) ([]candidate, error) {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	pattern, err := regexp.Compile("(?i)(" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("%w: compile text pattern: %v", types.ErrInternal, err)
	}

	matches, err := e.matcher.Search(ctx, e.root, pattern, sourceCap, func(p string) bool {
		return e.registry.Known(p) && opts.acceptsPath(p)
	})
	if err != nil && len(matches) == 0 {
		return nil, err
	}

	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, candidate{
			path:      m.Path,
			startLine: m.Line,
			endLine:   m.Line,
			snippet:   strings.TrimSpace(m.LineText),
			raw:       0.6,
		})
	}
	return candidates, nil
}

// searchSemantic embeds the query and ranks nearest chunks, recording
// distance observations for the calibrator along the way.
func (e *Engine) searchSemantic(ctx context.Context, query string, opts *SearchOptions) ([]candidate, error) {
	if !e.SemanticEnabled() {
		return nil, nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbedderUnavailable, err)
	}

	topK := 10 * opts.Limit
	if topK > 200 {
		topK = 200
	}
	neighbors, err := e.store.SearchSimilarChunks(ctx, vectors[0], topK, "")
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ChunkID
	}
	chunks, err := e.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	chunkByID := make(map[int64]int, len(chunks))
	for i := range chunks {
		chunkByID[chunks[i].ID] = i
	}

	e.recordObservations(ctx, neighbors, chunks, chunkByID)

	maxDistance, minSimilarity := e.thresholds(ctx, dominantLanguage(neighbors, chunks, chunkByID))

	candidates := make([]candidate, 0, len(neighbors))
	for _, n := range neighbors {
		idx, ok := chunkByID[n.ChunkID]
		if !ok {
			continue
		}
		chunk := &chunks[idx]
		similarity := 1.0 - n.Distance
		if n.Distance >= maxDistance || similarity < minSimilarity {
			continue
		}
		if !opts.acceptsPath(chunk.Path) {
			continue
		}

		var symbols []string
		if chunk.ContextLabel != "" && chunk.ContextLabel != "code block" {
			if _, name, ok := strings.Cut(chunk.ContextLabel, " "); ok {
				symbols = []string{name}
			}
		}
		candidates = append(candidates, candidate{
			path:      chunk.Path,
			startLine: chunk.StartLine,
			endLine:   chunk.EndLine,
			snippet:   snippet(chunk.Content),
			symbols:   symbols,
			raw:       similarity,
		})
	}
	return candidates, nil
}

// recordObservations feeds the calibrator, sampled by the collector.
func (e *Engine) recordObservations(ctx context.Context, neighbors []store.ChunkDistance, chunks []store.ChunkRow, chunkByID map[int64]int) {
	if e.collector == nil {
		return
	}
	for _, n := range neighbors {
		idx, ok := chunkByID[n.ChunkID]
		if !ok {
			continue
		}
		if lang := chunks[idx].Language; lang != "" {
			e.collector.Record(lang, n.Distance)
		}
	}
	if e.collector.NeedsFlush() {
		if err := e.collector.Flush(ctx, e.store); err != nil {
			logger.Warn("observation flush failed", "error", err)
		}
	}
}

// dominantLanguage picks the most common language among the top neighbors,
// used to select which calibrated thresholds apply.
func dominantLanguage(neighbors []store.ChunkDistance, chunks []store.ChunkRow, chunkByID map[int64]int) string {
	counts := make(map[string]int)
	for i, n := range neighbors {
		if i >= 5 {
			break
		}
		if idx, ok := chunkByID[n.ChunkID]; ok && chunks[idx].Language != "" {
			counts[chunks[idx].Language]++
		}
	}
	best, bestCount := "", 0
	for lang, count := range counts {
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

// searchGraph seeds from the hinted active file and offers its dependency
// neighborhood as candidates. Without a hint the source is empty.
func (e *Engine) searchGraph(ctx context.Context, opts *SearchOptions) ([]candidate, error) {
	if opts.ActiveFile == "" {
		return nil, nil
	}
	report, err := e.Deps(ctx, opts.ActiveFile)
	if err != nil {
		return nil, nil // unknown active file is a no-op, not a failure
	}

	var candidates []candidate
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] || !opts.acceptsPath(p) {
			return
		}
		seen[p] = true
		candidates = append(candidates, candidate{path: p, raw: 0.5})
	}
	for _, edge := range report.Imports {
		if edge.Resolved {
			add(edge.Path)
		}
	}
	for _, edge := range report.ImportedBy {
		add(edge.Path)
	}
	if len(candidates) > sourceCap {
		candidates = candidates[:sourceCap]
	}
	return candidates, nil
}

// snippet truncates chunk content for transport.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	if len(content) > 200 {
		content = content[:200]
	}
	return content
}

// isTestPath detects test locations for the de-boost rule.
func isTestPath(p string) bool {
	lower := strings.ToLower(p)
	for _, comp := range strings.Split(lower, "/") {
		if comp == "test" || comp == "tests" || comp == "__tests__" || comp == "spec" {
			return true
		}
	}
	base := path.Base(lower)
	return strings.Contains(base, "_test.") || strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") || strings.HasPrefix(base, "test_")
}

// isTestQuery suppresses the test de-boost for test-focused queries.
func isTestQuery(q string) bool {
	lower := strings.ToLower(q)
	return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
}
