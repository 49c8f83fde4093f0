package types

// DependencyKind classifies an outgoing edge in the file dependency graph.
type DependencyKind string

const (
	DepImport   DependencyKind = "import"
	DepReExport DependencyKind = "re-export"
)

// Dependency is an outgoing reference from a source file to another file or
// module. Target holds the raw import literal exactly as written; resolving
// it to an indexed file happens at query time.
type Dependency struct {
	Target string
	Symbol string // named import, if any
	Kind   DependencyKind
}
