package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantiq/semantiq/pkg/types"
)

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func TestBuildChunksSymbolSpans(t *testing.T) {
	lines := makeLines(20)
	symbols := []types.Symbol{
		{Name: "big", Kind: types.KindFunction, StartLine: 1, EndLine: 10},
		{Name: "tiny", Kind: types.KindFunction, StartLine: 12, EndLine: 13}, // span 2 < 4: no chunk
	}

	chunks := BuildChunks(symbols, lines)

	var labels []string
	for _, c := range chunks {
		labels = append(labels, c.ContextLabel)
	}
	assert.Contains(t, labels, "function big")
	assert.NotContains(t, labels, "function tiny")
}

func TestBuildChunksWindowsOverGaps(t *testing.T) {
	// 120 uncovered lines: windows at 1-50, 26-75, 51-100, 76-120.
	lines := makeLines(120)
	chunks := BuildChunks(nil, lines)

	require.NotEmpty(t, chunks)
	first := chunks[0]
	assert.Equal(t, 1, first.StartLine)
	assert.Equal(t, 50, first.EndLine)
	assert.Equal(t, "code block", first.ContextLabel)

	second := chunks[1]
	assert.Equal(t, 26, second.StartLine)

	last := chunks[len(chunks)-1]
	assert.Equal(t, 120, last.EndLine)
}

func TestBuildChunksSkipsShortGaps(t *testing.T) {
	lines := makeLines(12)
	symbols := []types.Symbol{
		{Name: "f", Kind: types.KindFunction, StartLine: 1, EndLine: 8},
	}
	// Remaining gap is lines 9-12 (4 lines < 5): skipped.
	chunks := BuildChunks(symbols, lines)

	require.Len(t, chunks, 1)
	assert.Equal(t, "function f", chunks[0].ContextLabel)
}

func TestBuildChunksCoversGapBetweenSymbols(t *testing.T) {
	lines := makeLines(30)
	symbols := []types.Symbol{
		{Name: "a", Kind: types.KindFunction, StartLine: 1, EndLine: 10},
		{Name: "b", Kind: types.KindFunction, StartLine: 24, EndLine: 30},
	}
	chunks := BuildChunks(symbols, lines)

	// Gap 11-23 (13 lines) gets one window.
	var window *types.Chunk
	for i := range chunks {
		if chunks[i].ContextLabel == "code block" {
			window = &chunks[i]
		}
	}
	require.NotNil(t, window)
	assert.Equal(t, 11, window.StartLine)
	assert.Equal(t, 23, window.EndLine)
}

func TestBuildChunksEmptyContentSkipped(t *testing.T) {
	lines := strings.Split(strings.Repeat("\n", 59), "\n")
	chunks := BuildChunks(nil, lines)
	assert.Empty(t, chunks)
}

func TestBuildChunksValidate(t *testing.T) {
	lines := makeLines(200)
	symbols := []types.Symbol{
		{Name: "f", Kind: types.KindFunction, StartLine: 40, EndLine: 90},
	}
	for _, c := range BuildChunks(symbols, lines) {
		assert.NoError(t, c.Validate())
		assert.LessOrEqual(t, c.StartLine, c.EndLine)
	}
}
