// Package engine answers the four query kinds: hybrid search, symbol
// reference lookup, file dependency graphs and symbol explanation.
//
// Search fans out to four concurrent sources — FTS over symbols, a
// streaming grep, vector similarity over chunk embeddings, and the
// dependency neighborhood of a hinted active file — and fuses their
// rankings with reciprocal rank fusion (K=60; weights 0.25 lexical, 0.40
// semantic, 0.20 symbol, 0.15 graph). Query variants (case conversions and
// a small synonym table) widen the lexical sources. Each source gets 2
// seconds; the whole call gets 5, after which partial results come back
// with ErrTimeout.
//
// The semantic source doubles as the calibrator's data feed: every
// neighbor's distance is offered to the observation collector, and the
// engine consults calibrated per-language thresholds (falling back to the
// _global_ row, then permissive defaults) to cut off weak matches.
package engine
