package language

import (
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/elixir"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Query capture conventions:
//
//	@symbol.<kind>  outer node of a symbol definition; <kind> is a types.SymbolKind
//	@name           the symbol's identifier
//	@import         outer node of an import; @import.reexport marks re-exports
//	@path           the import target literal
//	@symbol         a named import inside an import clause
//	@callee         call-style imports only count when the callee text matches
//	                the spec's ImportCallees set (require, source, use, ...)

const tsSymbolQuery = `
(function_declaration name: (identifier) @name) @symbol.function
(class_declaration name: (type_identifier) @name) @symbol.class
(interface_declaration name: (type_identifier) @name) @symbol.interface
(enum_declaration name: (identifier) @name) @symbol.enum
(type_alias_declaration name: (type_identifier) @name) @symbol.type
(method_definition name: (property_identifier) @name) @symbol.method
(variable_declarator name: (identifier) @name) @symbol.variable
`

const tsImportQuery = `
(import_statement source: (string) @path) @import
(import_statement
  (import_clause (named_imports (import_specifier name: (identifier) @symbol)))
  source: (string) @path) @import
(export_statement source: (string) @path) @import.reexport
`

const jsSymbolQuery = `
(function_declaration name: (identifier) @name) @symbol.function
(class_declaration name: (identifier) @name) @symbol.class
(method_definition name: (property_identifier) @name) @symbol.method
(variable_declarator name: (identifier) @name) @symbol.variable
`

func builtins() []*Spec {
	return []*Spec{
		{
			Name:    "rust",
			Grammar: rust.GetLanguage(),
			SymbolQuery: `
(function_item name: (identifier) @name) @symbol.function
(struct_item name: (type_identifier) @name) @symbol.struct
(enum_item name: (type_identifier) @name) @symbol.enum
(trait_item name: (type_identifier) @name) @symbol.trait
(mod_item name: (identifier) @name) @symbol.module
(const_item name: (identifier) @name) @symbol.constant
(static_item name: (identifier) @name) @symbol.variable
(type_item name: (type_identifier) @name) @symbol.type
`,
			ImportQuery: `
(use_declaration argument: (_) @path) @import
`,
			Extensions: []string{"rs"},
			ImportExts: []string{".rs"},
		},
		{
			Name:        "typescript",
			Grammar:     typescript.GetLanguage(),
			SymbolQuery: tsSymbolQuery,
			ImportQuery: tsImportQuery,
			Extensions:  []string{"ts"},
			ImportExts:  []string{".ts", ".tsx", ".js", ".jsx", ".mjs"},
		},
		{
			Name:        "tsx",
			Grammar:     tsx.GetLanguage(),
			SymbolQuery: tsSymbolQuery,
			ImportQuery: tsImportQuery,
			Extensions:  []string{"tsx"},
			ImportExts:  []string{".tsx", ".ts", ".js", ".jsx", ".mjs"},
		},
		{
			Name:        "javascript",
			Grammar:     javascript.GetLanguage(),
			SymbolQuery: jsSymbolQuery,
			ImportQuery: tsImportQuery,
			Extensions:  []string{"js", "jsx", "mjs"},
			ImportExts:  []string{".js", ".jsx", ".mjs", ".ts", ".tsx"},
		},
		{
			Name:    "python",
			Grammar: python.GetLanguage(),
			SymbolQuery: `
(function_definition name: (identifier) @name) @symbol.function
(class_definition name: (identifier) @name) @symbol.class
`,
			ImportQuery: `
(import_statement name: (dotted_name) @path) @import
(import_from_statement module_name: (dotted_name) @path) @import
`,
			Extensions: []string{"py", "pyi"},
			ImportExts: []string{".py", ".pyi"},
		},
		{
			Name:    "go",
			Grammar: golang.GetLanguage(),
			SymbolQuery: `
(function_declaration name: (identifier) @name) @symbol.function
(method_declaration name: (field_identifier) @name) @symbol.method
(type_spec name: (type_identifier) @name type: (struct_type)) @symbol.struct
(type_spec name: (type_identifier) @name type: (interface_type)) @symbol.interface
(type_spec name: (type_identifier) @name) @symbol.type
(const_spec name: (identifier) @name) @symbol.constant
(var_spec name: (identifier) @name) @symbol.variable
`,
			ImportQuery: `
(import_spec path: (interpreted_string_literal) @path) @import
`,
			Extensions: []string{"go"},
			ImportExts: []string{".go"},
		},
		{
			Name:    "java",
			Grammar: java.GetLanguage(),
			SymbolQuery: `
(class_declaration name: (identifier) @name) @symbol.class
(interface_declaration name: (identifier) @name) @symbol.interface
(enum_declaration name: (identifier) @name) @symbol.enum
(method_declaration name: (identifier) @name) @symbol.method
`,
			ImportQuery: `
(import_declaration (scoped_identifier) @path) @import
`,
			Extensions: []string{"java"},
			ImportExts: []string{".java"},
		},
		{
			Name:    "c",
			Grammar: c.GetLanguage(),
			SymbolQuery: `
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @symbol.function
(struct_specifier name: (type_identifier) @name) @symbol.struct
(enum_specifier name: (type_identifier) @name) @symbol.enum
(type_definition declarator: (type_identifier) @name) @symbol.type
`,
			ImportQuery: `
(preproc_include path: (_) @path) @import
`,
			Extensions: []string{"c", "h"},
			ImportExts: []string{".h", ".c"},
		},
		{
			Name:    "cpp",
			Grammar: cpp.GetLanguage(),
			SymbolQuery: `
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @symbol.function
(class_specifier name: (type_identifier) @name) @symbol.class
(struct_specifier name: (type_identifier) @name) @symbol.struct
(enum_specifier name: (type_identifier) @name) @symbol.enum
(type_definition declarator: (type_identifier) @name) @symbol.type
`,
			ImportQuery: `
(preproc_include path: (_) @path) @import
`,
			Extensions: []string{"cpp", "cc", "hpp"},
			ImportExts: []string{".hpp", ".h", ".cpp", ".cc"},
		},
		{
			Name:    "php",
			Grammar: php.GetLanguage(),
			SymbolQuery: `
(function_definition name: (name) @name) @symbol.function
(method_declaration name: (name) @name) @symbol.method
(class_declaration name: (name) @name) @symbol.class
(interface_declaration name: (name) @name) @symbol.interface
(trait_declaration name: (name) @name) @symbol.trait
`,
			ImportQuery: `
(namespace_use_clause (qualified_name) @path) @import
`,
			Extensions: []string{"php", "phtml"},
			ImportExts: []string{".php"},
		},
		{
			Name:    "ruby",
			Grammar: ruby.GetLanguage(),
			SymbolQuery: `
(method name: (identifier) @name) @symbol.method
(class name: (constant) @name) @symbol.class
(module name: (constant) @name) @symbol.module
`,
			ImportQuery: `
(call
  method: (identifier) @callee
  arguments: (argument_list (string) @path)) @import
`,
			ImportCallees: []string{"require", "require_relative", "load"},
			Extensions:    []string{"rb", "rake"},
			ImportExts:    []string{".rb"},
		},
		{
			Name:    "csharp",
			Grammar: csharp.GetLanguage(),
			SymbolQuery: `
(class_declaration name: (identifier) @name) @symbol.class
(interface_declaration name: (identifier) @name) @symbol.interface
(struct_declaration name: (identifier) @name) @symbol.struct
(enum_declaration name: (identifier) @name) @symbol.enum
(method_declaration name: (identifier) @name) @symbol.method
`,
			ImportQuery: `
(using_directive (_) @path) @import
`,
			Extensions: []string{"cs"},
			ImportExts: []string{".cs"},
		},
		{
			Name:    "kotlin",
			Grammar: kotlin.GetLanguage(),
			SymbolQuery: `
(function_declaration (simple_identifier) @name) @symbol.function
(class_declaration (type_identifier) @name) @symbol.class
(object_declaration (type_identifier) @name) @symbol.class
`,
			ImportQuery: `
(import_header (identifier) @path) @import
`,
			Extensions: []string{"kt", "kts"},
			ImportExts: []string{".kt", ".kts"},
		},
		{
			Name:    "scala",
			Grammar: scala.GetLanguage(),
			SymbolQuery: `
(function_definition name: (identifier) @name) @symbol.function
(class_definition name: (identifier) @name) @symbol.class
(object_definition name: (identifier) @name) @symbol.module
(trait_definition name: (identifier) @name) @symbol.trait
`,
			ImportQuery: `
(import_declaration (_) @path) @import
`,
			Extensions: []string{"scala", "sc"},
			ImportExts: []string{".scala", ".sc"},
		},
		{
			Name:    "bash",
			Grammar: bash.GetLanguage(),
			SymbolQuery: `
(function_definition name: (word) @name) @symbol.function
`,
			ImportQuery: `
(command
  name: (command_name (word) @callee)
  argument: (word) @path) @import
`,
			ImportCallees: []string{"source", "."},
			Extensions:    []string{"sh", "bash", "zsh"},
			ImportExts:    []string{".sh", ".bash"},
		},
		{
			Name:    "elixir",
			Grammar: elixir.GetLanguage(),
			SymbolQuery: `
(call
  target: (identifier) @callee
  (arguments . (_) @name)) @symbol.function
`,
			ImportQuery: `
(call
  target: (identifier) @callee
  (arguments . (alias) @path)) @import
`,
			SymbolCallees: []string{"def", "defp", "defmodule", "defmacro"},
			ImportCallees: []string{"import", "alias", "require", "use"},
			Extensions:    []string{"ex", "exs"},
			ImportExts:    []string{".ex", ".exs"},
		},

		// Chunk-only languages: windows feed the embedder, nothing else.
		{Name: "html", ChunkOnly: true, Extensions: []string{"html", "htm"}},
		{Name: "json", ChunkOnly: true, Extensions: []string{"json"}},
		{Name: "yaml", ChunkOnly: true, Extensions: []string{"yaml", "yml"}},
		{Name: "toml", ChunkOnly: true, Extensions: []string{"toml"}},
	}
}
