package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/semantiq/semantiq/internal/language"
	"github.com/semantiq/semantiq/pkg/types"
)

// MaxDepth bounds AST recursion; deeper branches are truncated silently.
const MaxDepth = 500

// Parser extracts symbols, import edges and chunks from source files using
// tree-sitter grammars supplied by the language registry. A Parser is not
// safe for concurrent use; each indexing worker owns its own.
type Parser struct {
	registry *language.Registry
	sp       *sitter.Parser
}

// New creates a parser backed by the given registry.
func New(registry *language.Registry) *Parser {
	return &Parser{
		registry: registry,
		sp:       sitter.NewParser(),
	}
}

// Parse extracts symbols, dependencies and chunks from a single file.
// Malformed source never panics: tree-sitter produces a best-effort tree and
// every byte access goes through bounds-checked slicing.
func (p *Parser) Parse(ctx context.Context, path string, src []byte, lang string) (*types.ParseResult, error) {
	spec := p.registry.ForName(lang)
	if spec == nil {
		return nil, fmt.Errorf("%w: unknown language %q", types.ErrInvalidInput, lang)
	}

	lines := strings.Split(safeString(src), "\n")
	result := &types.ParseResult{Language: spec.Name}

	if spec.ChunkOnly || spec.Grammar == nil {
		result.Chunks = BuildChunks(nil, lines)
		return result, nil
	}

	p.sp.SetLanguage(spec.Grammar)
	tree, err := p.sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", types.ErrParserInternal, path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	symbols, err := p.extractSymbols(spec, root, src)
	if err != nil {
		return nil, err
	}
	deps, err := p.extractImports(spec, root, src)
	if err != nil {
		return nil, err
	}

	result.Symbols = symbols
	result.Dependencies = deps
	result.Chunks = BuildChunks(symbols, lines)
	return result, nil
}

// extractSymbols runs the language's symbol query against the tree.
func (p *Parser) extractSymbols(spec *language.Spec, root *sitter.Node, src []byte) ([]types.Symbol, error) {
	if spec.SymbolQuery == "" {
		return nil, nil
	}

	var symbols []types.Symbol
	seen := make(map[string]int)

	err := runQuery(spec.SymbolQuery, spec.Grammar, root, src, func(m match) {
		node, kind := m.symbolNode()
		if node == nil {
			return
		}
		if len(spec.SymbolCallees) > 0 && !calleeAllowed(m.text("callee"), spec.SymbolCallees) {
			return
		}

		name := symbolName(m)
		if name == "" {
			return
		}

		kind = p.rewriteKind(spec, node, m, kind)

		sym := types.Symbol{
			Name:       name,
			Kind:       kind,
			StartLine:  int(node.StartPoint().Row) + 1,
			EndLine:    int(node.EndPoint().Row) + 1,
			Signature:  signature(node, src),
			DocComment: docComment(node, src),
		}
		if sym.Validate() != nil {
			return
		}
		key := fmt.Sprintf("%s:%d", sym.Name, sym.StartLine)
		if idx, ok := seen[key]; ok {
			// A node can satisfy both a specific pattern (struct,
			// interface) and the generic type pattern; the specific
			// kind wins whichever order the cursor yields them.
			if symbols[idx].Kind == types.KindType && sym.Kind != types.KindType {
				symbols[idx].Kind = sym.Kind
			}
			return
		}
		seen[key] = len(symbols)
		symbols = append(symbols, sym)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: symbol query for %s: %v", types.ErrParserInternal, spec.Name, err)
	}
	return symbols, nil
}

// rewriteKind applies per-language kind fixups. For TypeScript and
// JavaScript a variable whose initializer is an arrow function or function
// expression is really a function definition.
func (p *Parser) rewriteKind(spec *language.Spec, node *sitter.Node, m match, kind types.SymbolKind) types.SymbolKind {
	switch spec.Name {
	case "typescript", "tsx", "javascript":
		if kind == types.KindVariable && isFunctionValue(node) {
			return types.KindFunction
		}
	case "elixir":
		if m.text("callee") != nil && string(m.text("callee")) == "defmodule" {
			return types.KindModule
		}
	}
	return kind
}

// isFunctionValue reports whether a variable_declarator's value is a
// function-shaped expression.
func isFunctionValue(node *sitter.Node) bool {
	value := node.ChildByFieldName("value")
	if value == nil {
		return false
	}
	switch value.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

// extractImports runs the language's import query against the tree.
func (p *Parser) extractImports(spec *language.Spec, root *sitter.Node, src []byte) ([]types.Dependency, error) {
	if spec.ImportQuery == "" {
		return nil, nil
	}

	var deps []types.Dependency
	seen := make(map[string]bool)

	err := runQuery(spec.ImportQuery, spec.Grammar, root, src, func(m match) {
		node, kind := m.importNode()
		if node == nil {
			return
		}
		if len(spec.ImportCallees) > 0 && !calleeAllowed(m.text("callee"), spec.ImportCallees) {
			return
		}

		target := cleanImportTarget(string(m.text("path")))
		if target == "" {
			return
		}
		symbol := strings.TrimSpace(string(m.text("symbol")))

		dep := types.Dependency{Target: target, Symbol: symbol, Kind: kind}
		key := target + "\x00" + symbol
		if seen[key] {
			return
		}
		seen[key] = true
		deps = append(deps, dep)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: import query for %s: %v", types.ErrParserInternal, spec.Name, err)
	}
	return deps, nil
}

// match is the set of captures for one query match, keyed by capture name.
type match struct {
	nodes map[string]*sitter.Node
	src   []byte
}

func (m match) text(name string) []byte {
	node := m.nodes[name]
	if node == nil {
		return nil
	}
	return []byte(content(node, m.src))
}

// symbolNode returns the @symbol.<kind> capture and its kind.
func (m match) symbolNode() (*sitter.Node, types.SymbolKind) {
	for name, node := range m.nodes {
		if rest, ok := strings.CutPrefix(name, "symbol."); ok {
			return node, types.SymbolKind(rest)
		}
	}
	return nil, ""
}

// importNode returns the @import capture and the dependency kind.
func (m match) importNode() (*sitter.Node, types.DependencyKind) {
	if node := m.nodes["import.reexport"]; node != nil {
		return node, types.DepReExport
	}
	if node := m.nodes["import"]; node != nil {
		return node, types.DepImport
	}
	return nil, ""
}

// runQuery compiles and executes a tree query, calling fn for each match.
func runQuery(queryStr string, grammar *sitter.Language, root *sitter.Node, src []byte, fn func(match)) error {
	q, err := sitter.NewQuery([]byte(queryStr), grammar)
	if err != nil {
		return err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	for {
		qm, ok := qc.NextMatch()
		if !ok {
			break
		}
		m := match{nodes: make(map[string]*sitter.Node, len(qm.Captures)), src: src}
		for _, cap := range qm.Captures {
			m.nodes[q.CaptureNameForId(cap.Index)] = cap.Node
		}
		fn(m)
	}
	return nil
}

func calleeAllowed(callee []byte, allowed []string) bool {
	if callee == nil {
		return false
	}
	text := string(callee)
	for _, a := range allowed {
		if text == a {
			return true
		}
	}
	return false
}

// symbolName extracts the @name capture, normalizing call-shaped names
// (Elixir def heads like `foo(a, b)`) down to the bare identifier.
func symbolName(m match) string {
	name := strings.TrimSpace(string(m.text("name")))
	if i := strings.IndexAny(name, "( \t\n"); i > 0 {
		name = name[:i]
	}
	return name
}

// signature is the first line of the definition, cut before the body.
func signature(node *sitter.Node, src []byte) string {
	text := content(node, src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if i := strings.IndexByte(text, '{'); i > 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// docComment collects the run of comment siblings immediately above a
// definition. Nested spec nodes (a type_spec inside a type_declaration)
// climb to the enclosing declaration, where the comment actually sits.
func docComment(node *sitter.Node, src []byte) string {
	for level := 0; node != nil && level < 3; level++ {
		if c := commentAbove(node, src); c != "" {
			return c
		}
		if node.PrevNamedSibling() != nil {
			return ""
		}
		node = node.Parent()
	}
	return ""
}

func commentAbove(node *sitter.Node, src []byte) string {
	var parts []string
	prev := node.PrevNamedSibling()
	expectedEnd := node.StartPoint().Row

	for depth := 0; prev != nil && depth < MaxDepth; depth++ {
		if !strings.Contains(prev.Type(), "comment") {
			break
		}
		// Only comments directly adjacent to the definition count.
		if prev.EndPoint().Row+1 < expectedEnd {
			break
		}
		parts = append([]string{strings.TrimSpace(content(prev, src))}, parts...)
		expectedEnd = prev.StartPoint().Row
		prev = prev.PrevNamedSibling()
	}
	return strings.Join(parts, "\n")
}

// cleanImportTarget strips quote and bracket delimiters from a raw import
// literal and trims trailing statement syntax.
func cleanImportTarget(raw string) string {
	target := strings.TrimSpace(raw)
	target = strings.Trim(target, `"'`)
	target = strings.TrimPrefix(target, "<")
	target = strings.TrimSuffix(target, ">")
	target = strings.TrimSuffix(target, ";")
	return strings.TrimSpace(target)
}

// content returns the node's source text via bounds-checked slicing. Out of
// range offsets or invalid UTF-8 boundaries yield an empty string rather
// than a panic.
func content(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || int(end) > len(src) {
		return ""
	}
	b := src[start:end]
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

// safeString converts bytes to a string, replacing invalid UTF-8.
func safeString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
