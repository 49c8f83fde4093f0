package parser

import (
	"fmt"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

const (
	// minSymbolChunkLines is the smallest symbol span that becomes a chunk.
	minSymbolChunkLines = 4
	// windowLines / windowOverlap shape the sliding windows over code no
	// symbol chunk covers.
	windowLines   = 50
	windowOverlap = 25
	// minGapLines: uncovered runs shorter than this are skipped.
	minGapLines = 5
)

// BuildChunks produces the chunk set for a file: one chunk per symbol whose
// span is at least minSymbolChunkLines, then sliding windows over the line
// ranges no symbol chunk covers. Symbols may be nil for chunk-only
// languages, in which case the whole file is windowed.
func BuildChunks(symbols []types.Symbol, lines []string) []types.Chunk {
	var chunks []types.Chunk
	covered := make([]bool, len(lines))

	for _, sym := range symbols {
		if sym.EndLine-sym.StartLine+1 < minSymbolChunkLines {
			continue
		}
		start, end := clampLines(sym.StartLine, sym.EndLine, len(lines))
		if start > end {
			continue
		}
		content := strings.Join(lines[start-1:end], "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}
		chunks = append(chunks, types.Chunk{
			Content:      content,
			StartLine:    start,
			EndLine:      end,
			ContextLabel: fmt.Sprintf("%s %s", sym.Kind, sym.Name),
		})
		for i := start - 1; i < end; i++ {
			covered[i] = true
		}
	}

	chunks = append(chunks, windowChunks(lines, covered)...)
	return chunks
}

// windowChunks emits sliding windows over maximal uncovered runs.
func windowChunks(lines []string, covered []bool) []types.Chunk {
	var chunks []types.Chunk

	runStart := -1
	for i := 0; i <= len(lines); i++ {
		uncovered := i < len(lines) && !covered[i]
		if uncovered && runStart < 0 {
			runStart = i
		}
		if !uncovered && runStart >= 0 {
			chunks = append(chunks, windowRun(lines, runStart, i)...)
			runStart = -1
		}
	}
	return chunks
}

// windowRun windows one uncovered run [start, end) of 0-based line indices.
func windowRun(lines []string, start, end int) []types.Chunk {
	runLen := end - start
	if runLen < minGapLines {
		return nil
	}

	var chunks []types.Chunk
	for off := 0; off < runLen; off += windowLines - windowOverlap {
		wEnd := off + windowLines
		if wEnd > runLen {
			wEnd = runLen
		}
		content := strings.Join(lines[start+off:start+wEnd], "\n")
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, types.Chunk{
				Content:      content,
				StartLine:    start + off + 1,
				EndLine:      start + wEnd,
				ContextLabel: "code block",
			})
		}
		if wEnd == runLen {
			break
		}
	}
	return chunks
}

func clampLines(start, end, max int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > max {
		end = max
	}
	return start, end
}
