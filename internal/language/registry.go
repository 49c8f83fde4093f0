package language

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Spec describes one supported language: its tree-sitter grammar, the query
// strings used for symbol and import capture, and the file extensions it
// claims. Chunk-only languages carry no grammar; they still produce sliding
// window chunks for the embedder but no symbols or imports.
type Spec struct {
	Name        string
	Grammar     *sitter.Language
	SymbolQuery string
	ImportQuery string
	ChunkOnly   bool
	Extensions  []string
	// ImportExts are the candidate file extensions tried when resolving an
	// import literal of this language to an indexed file.
	ImportExts []string
	// SymbolCallees / ImportCallees restrict call-shaped captures: a match
	// with a @callee capture only counts when the callee text is listed.
	SymbolCallees []string
	ImportCallees []string
}

// Registry maps file extensions to language specs.
type Registry struct {
	byExt  map[string]*Spec
	byName map[string]*Spec
}

// NewRegistry builds a registry with every built-in language registered.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:  make(map[string]*Spec),
		byName: make(map[string]*Spec),
	}
	for _, spec := range builtins() {
		r.Register(spec)
	}
	return r
}

// Register adds a spec, claiming all of its extensions.
func (r *Registry) Register(spec *Spec) {
	r.byName[spec.Name] = spec
	for _, ext := range spec.Extensions {
		r.byExt[strings.ToLower(ext)] = spec
	}
}

// ForPath returns the spec for a file path based on its extension, or nil
// if the extension is unknown. Matching is case-insensitive.
func (r *Registry) ForPath(path string) *Spec {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil
	}
	return r.byExt[ext]
}

// ForName returns the spec for a language name, or nil.
func (r *Registry) ForName(name string) *Spec {
	return r.byName[strings.ToLower(name)]
}

// Known reports whether a path's extension maps to any language.
func (r *Registry) Known(path string) bool {
	return r.ForPath(path) != nil
}

// Languages returns all registered language names.
func (r *Registry) Languages() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
