package embedder

import "context"

// Stub is the fallback for platforms without the model runtime. It returns
// zero vectors and reports itself unavailable, which makes the retrieval
// engine skip vector search.
type Stub struct{}

// NewStub creates a stub embedder.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, Dimension)
	}
	return out, nil
}

func (s *Stub) Dimension() int { return Dimension }

func (s *Stub) Available() bool { return false }
