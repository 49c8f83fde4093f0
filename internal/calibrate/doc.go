// Package calibrate learns per-language semantic-distance cut-offs from
// observed search behavior.
//
// During semantic search the Collector samples (language, distance) pairs:
// everything while a language has fewer than 500 observations (bootstrap),
// then 10% of observations after that (production). The Calibrator reads
// the accumulated samples, sorts the distances and persists
// max_distance = p90 and min_similarity = 1 − p10 per language, plus a
// "_global_" row over all languages. The retrieval engine consults the
// rows in that order, falling back to permissive compile-time defaults.
package calibrate
