package embedder

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub(t *testing.T) {
	s := NewStub()
	assert.False(t, s.Available())
	assert.Equal(t, Dimension, s.Dimension())

	out, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.Len(t, v, Dimension)
		for _, x := range v {
			assert.Zero(t, x)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := Normalize(make([]float32, 4))
	for _, x := range zero {
		assert.Zero(t, x)
	}
}

// fakeModel returns deterministic vectors and counts calls.
type fakeModel struct {
	calls int
	fail  int // fail this many calls before succeeding
}

func (m *fakeModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.fail > 0 {
		m.fail--
		return nil, errors.New("transient")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, Dimension)
		for j := range v {
			v[j] = float32(len(text)+j) / 100
		}
		out[i] = v
	}
	return out, nil
}

func (m *fakeModel) Dimension() int { return Dimension }
func (m *fakeModel) Close() error   { return nil }

func TestModelEmbedderNormalizesOutput(t *testing.T) {
	e, err := NewModelEmbedder(&fakeModel{})
	require.NoError(t, err)
	assert.True(t, e.Available())

	out, err := e.EmbedBatch(context.Background(), []string{"hello", "world wide"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	for _, v := range out {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		norm := math.Sqrt(sum)
		assert.InDelta(t, 1.0, norm, 0.01, "embedding not unit-norm")
	}
}

func TestModelEmbedderCaches(t *testing.T) {
	m := &fakeModel{}
	e, err := NewModelEmbedder(m)
	require.NoError(t, err)

	_, err = e.EmbedBatch(context.Background(), []string{"same text"})
	require.NoError(t, err)
	_, err = e.EmbedBatch(context.Background(), []string{"same text"})
	require.NoError(t, err)

	assert.Equal(t, 1, m.calls, "second call should hit the cache")
}

func TestModelEmbedderRetriesTransient(t *testing.T) {
	m := &fakeModel{fail: 2}
	e, err := NewModelEmbedder(m)
	require.NoError(t, err)

	out, err := e.EmbedBatch(context.Background(), []string{"retry me"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 3, m.calls)
}

type wrongDimModel struct{ fakeModel }

func (m *wrongDimModel) Dimension() int { return 768 }

func TestModelEmbedderRejectsWrongDimension(t *testing.T) {
	_, err := NewModelEmbedder(&wrongDimModel{})
	assert.Error(t, err)
}
