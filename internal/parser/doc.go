// Package parser turns raw source bytes into symbols, import edges and
// semantic chunks.
//
// Extraction is query-driven: the language registry supplies a tree-sitter
// grammar plus two S-expression queries per language, one capturing symbol
// definitions and one capturing imports. The parser itself only knows the
// capture conventions (@symbol.<kind>, @name, @import, @path), so adding a
// language means registering a row in the registry, not touching this
// package.
//
// Safety contract: parsing malformed source never panics. Tree-sitter
// produces a best-effort tree for broken input, byte slicing is bounds
// checked with an empty-string fallback, and AST recursion is capped at
// MaxDepth.
//
// Chunking runs after symbol extraction: each symbol spanning at least four
// lines becomes a chunk labeled "<kind> <name>", and lines no symbol chunk
// covers are windowed (50 lines, 25 overlap, runs under 5 lines skipped)
// into "code block" chunks.
package parser
