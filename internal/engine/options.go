package engine

import (
	"fmt"
	"path"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

const (
	defaultLimit    = 20
	defaultMinScore = 0.35
)

// blockedExts is the built-in path-extension blocklist: lock files,
// generated JSON/YAML, markdown and similar noise. Passing an explicit
// file_type filter overrides it.
var blockedExts = map[string]bool{
	"md":       true,
	"markdown": true,
	"json":     true,
	"yaml":     true,
	"yml":      true,
	"lock":     true,
	"sum":      true,
	"svg":      true,
}

// SearchOptions narrows and ranks query results. The zero value gets
// defaults from normalize.
type SearchOptions struct {
	Limit       int
	MinScore    float64
	FileTypes   []string // accepted extensions, without dots
	SymbolKinds []string
	// ActiveFile hints the caller's focus; same-directory results are
	// boosted and the graph source seeds from it.
	ActiveFile string
}

// normalize applies defaults and validates ranges.
func (o *SearchOptions) normalize() error {
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > searchLimitCap {
		o.Limit = searchLimitCap
	}
	if o.MinScore == 0 {
		o.MinScore = defaultMinScore
	}
	if o.MinScore < 0 || o.MinScore > 1 {
		return fmt.Errorf("%w: min_score %v outside [0,1]", types.ErrInvalidInput, o.MinScore)
	}
	for i, ft := range o.FileTypes {
		o.FileTypes[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ft), "."))
	}
	for i, sk := range o.SymbolKinds {
		o.SymbolKinds[i] = strings.ToLower(strings.TrimSpace(sk))
	}
	return nil
}

// acceptsPath applies the file_type filter, or the built-in blocklist when
// no filter is set.
func (o *SearchOptions) acceptsPath(p string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if len(o.FileTypes) > 0 {
		for _, ft := range o.FileTypes {
			if ext == ft {
				return true
			}
		}
		return false
	}
	return !blockedExts[ext]
}

// acceptsKind applies the symbol_kind filter.
func (o *SearchOptions) acceptsKind(kind types.SymbolKind) bool {
	if len(o.SymbolKinds) == 0 {
		return true
	}
	for _, sk := range o.SymbolKinds {
		if string(kind) == sk {
			return true
		}
	}
	return false
}

// ParseCSV splits a comma-separated option value into trimmed fields.
func ParseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
