// Package types provides shared value objects for the semantiq engine.
//
// The parser produces Symbol, Chunk and Dependency values; the store owns
// their persistent representation; the retrieval engine returns
// SearchResult, DependencyReport and SymbolExplanation values to callers.
// The error variables in errors.go form the taxonomy every public operation
// reports through.
package types
