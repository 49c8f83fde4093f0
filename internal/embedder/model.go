package embedder

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Model is the contract the external model loader fulfills: a sentence
// transformer loaded from disk that encodes text into token-pooled vectors.
// The loader is responsible for locating and checksum-verifying the model
// file; this package only consumes the loaded model.
type Model interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Close() error
}

// ModelEmbedder wraps a loaded Model with an LRU cache, retry-with-backoff
// on transient failures and output normalization. Inference is serialized:
// the underlying runtimes are generally not thread-safe.
type ModelEmbedder struct {
	model Model
	cache *lru.Cache[string, []float32]
	mu    sync.Mutex
}

// NewModelEmbedder creates an embedder around a loaded model. The model's
// dimension must match the engine-wide Dimension constant.
func NewModelEmbedder(model Model) (*ModelEmbedder, error) {
	if model.Dimension() != Dimension {
		return nil, fmt.Errorf("model dimension %d does not match required %d", model.Dimension(), Dimension)
	}
	cache, err := lru.New[string, []float32](10000)
	if err != nil {
		return nil, err
	}
	return &ModelEmbedder{model: model, cache: cache}, nil
}

// EmbedBatch embeds every text, serving repeats from cache and encoding the
// rest in one model call.
func (e *ModelEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := e.cache.Get(HashText(text)); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vectors, err := retryWithBackoff(ctx, defaultRetryConfig(), func() ([][]float32, error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.model.Encode(ctx, missing)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if len(vectors) != len(missing) {
			return nil, fmt.Errorf("%w: model returned %d vectors for %d texts", ErrTransient, len(vectors), len(missing))
		}
		for j, v := range vectors {
			v = Normalize(v)
			out[missingIdx[j]] = v
			e.cache.Add(HashText(missing[j]), v)
		}
	}

	return out, nil
}

func (e *ModelEmbedder) Dimension() int { return Dimension }

func (e *ModelEmbedder) Available() bool { return true }

// Close releases the underlying model.
func (e *ModelEmbedder) Close() error { return e.model.Close() }
