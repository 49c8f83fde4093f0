package engine

import (
	"strings"
	"unicode"
)

// synonymGroups seed query expansion with domain vocabulary; each group
// expands any of its members to the rest.
var synonymGroups = [][]string{
	{"rate limit", "rate_limit", "throttle", "quota"},
}

// expandQuery produces lexical variants of the query: per-term case
// conversions (snake/camel/Pascal/kebab) plus synonym-table entries. The
// original query itself is not repeated in the output.
func expandQuery(text string) []string {
	var expanded []string

	for _, term := range strings.Fields(text) {
		expanded = append(expanded, caseVariations(term)...)
	}
	expanded = append(expanded, synonyms(text)...)

	seen := map[string]bool{text: true}
	out := expanded[:0]
	for _, v := range expanded {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// synonyms returns group members triggered by the query text.
func synonyms(text string) []string {
	lower := strings.ToLower(text)
	compact := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(lower)

	var out []string
	for _, group := range synonymGroups {
		hit := false
		for _, member := range group {
			memberCompact := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(member)
			if strings.Contains(compact, memberCompact) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, member := range group {
			if !strings.Contains(lower, member) {
				out = append(out, member)
			}
		}
	}
	return out
}

func caseVariations(term string) []string {
	var variations []string

	if strings.Contains(term, "_") {
		variations = append(variations, snakeToCamel(term), snakeToPascal(term))
	}
	if isCamelCase(term) {
		variations = append(variations, camelToSnake(term))
	}
	if isPascalCase(term) {
		variations = append(variations, camelToSnake(term), pascalToCamel(term))
	}
	if strings.Contains(term, "-") {
		variations = append(variations, strings.ReplaceAll(term, "-", "_"), kebabToCamel(term))
	}
	if lower := strings.ToLower(term); lower != term {
		variations = append(variations, lower)
	}

	return variations
}

func snakeToCamel(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		switch {
		case r == '_':
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func snakeToPascal(s string) string {
	camel := snakeToCamel(s)
	if camel == "" {
		return ""
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pascalToCamel(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func kebabToCamel(s string) string {
	return snakeToCamel(strings.ReplaceAll(s, "-", "_"))
}

func isCamelCase(s string) bool {
	if s == "" || !unicode.IsLower(rune(s[0])) {
		return false
	}
	return strings.ContainsFunc(s, unicode.IsUpper)
}

func isPascalCase(s string) bool {
	if s == "" || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	return strings.ContainsFunc(s[1:], func(r rune) bool {
		return unicode.IsLower(r) || unicode.IsUpper(r)
	})
}
