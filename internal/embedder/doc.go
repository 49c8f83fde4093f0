// Package embedder produces fixed-dimension unit-norm vectors for text
// fragments.
//
// The engine defines the Model contract; an external loader locates and
// verifies the sentence-transformer model file on disk and hands the loaded
// model to NewModelEmbedder, which adds caching, retry and normalization.
// Platforms without a model runtime use Stub, whose zero vectors signal the
// retrieval engine to run without the semantic source.
package embedder
