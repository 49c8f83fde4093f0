package engine

import (
	"time"

	"github.com/semantiq/semantiq/internal/calibrate"
	"github.com/semantiq/semantiq/internal/embedder"
	"github.com/semantiq/semantiq/internal/language"
	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/internal/textsearch"
)

const (
	// sourceTimeout bounds each sub-search; a timed-out source simply
	// contributes nothing.
	sourceTimeout = 2 * time.Second
	// queryBudget is the wall-clock bound for a whole query; exceeding it
	// returns Timeout with partial results.
	queryBudget = 5 * time.Second
	// sourceCap bounds candidates from any single source.
	sourceCap = 500
	// maxQueryLen rejects degenerate queries early.
	maxQueryLen = 500
	// searchLimitCap / refsLimitCap bound returned list sizes.
	searchLimitCap = 50
	refsLimitCap   = 200
)

// Engine answers the four query kinds over a shared index store, optionally
// using an embedder for the semantic source. It holds no mutable state of
// its own beyond the observation collector; the database is the durable
// channel between it and the auto-indexer.
type Engine struct {
	store     *store.Store
	embedder  embedder.Embedder
	matcher   textsearch.Matcher
	registry  *language.Registry
	collector *calibrate.Collector
	root      string
}

// Config wires an Engine.
type Config struct {
	Store     *store.Store
	Embedder  embedder.Embedder // nil or unavailable disables the semantic source
	Matcher   textsearch.Matcher
	Registry  *language.Registry
	Collector *calibrate.Collector // nil disables observation recording
	Root      string
}

// New creates a retrieval engine.
func New(cfg Config) *Engine {
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = textsearch.New()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = language.NewRegistry()
	}
	return &Engine{
		store:     cfg.Store,
		embedder:  cfg.Embedder,
		matcher:   matcher,
		registry:  registry,
		collector: cfg.Collector,
		root:      cfg.Root,
	}
}

// SemanticEnabled reports whether the vector source can run; callers use it
// to flag results produced without semantic search.
func (e *Engine) SemanticEnabled() bool {
	return e.embedder != nil && e.embedder.Available()
}
