package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/go-openapi/inflect"
)

// Flavor is a target identifier casing convention.
type Flavor int

const (
	// PascalCase: "HttpsConnection" style, used by record-struct/doc
	// generators.
	PascalCase Flavor = iota
	// SnakeCase: "https_connection" style, used by table-ddl.
	SnakeCase
	// KebabCase: "https-connection" style, used by the graph-schema
	// generator (§4.1).
	KebabCase
)

// words splits an identifier into its constituent words, handling
// CamelCase/PascalCase boundaries, underscores and hyphens uniformly. It is
// the shared tokenizer behind every CanonicalizeIdentifier flavor.
func words(id string) []string {
	// Normalize underscores/hyphens to a single separator first.
	normalized := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, id)

	var out []string
	var cur []rune
	runes := []rune(normalized)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = nil
		}
	}
	for i, r := range runes {
		if r == ' ' {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// boundary (a): upper preceded by lower.
			if unicode.IsLower(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				// boundary (b): upper preceded by upper, followed by lower
				// (the end of an acronym run, e.g. "HTTPSConnection").
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// CanonicalizeIdentifier converts id into the requested Flavor (spec.md
// §4.1 `canonicalize_identifier`). The kebab-case transform follows the
// spec's literal hyphenation rule; Pascal/snake use golang.org/x/text/cases
// for the per-word case-folding pass.
func CanonicalizeIdentifier(id string, flavor Flavor) string {
	ws := words(id)
	switch flavor {
	case PascalCase:
		titler := cases.Title(language.Und)
		var sb strings.Builder
		for _, w := range ws {
			sb.WriteString(titler.String(strings.ToLower(w)))
		}
		return sb.String()
	case SnakeCase:
		lower := make([]string, len(ws))
		for i, w := range ws {
			lower[i] = strings.ToLower(w)
		}
		return strings.Join(lower, "_")
	case KebabCase:
		lower := make([]string, len(ws))
		for i, w := range ws {
			lower[i] = strings.ToLower(w)
		}
		joined := strings.Join(lower, "-")
		return collapseHyphens(joined)
	default:
		return id
	}
}

func collapseHyphens(s string) string {
	var sb strings.Builder
	lastHyphen := false
	for _, r := range s {
		if r == '-' {
			if lastHyphen {
				continue
			}
			lastHyphen = true
		} else {
			lastHyphen = false
		}
		sb.WriteRune(r)
	}
	return strings.Trim(sb.String(), "-")
}

// rules is the shared pluralization/singularization ruleset, grounded on
// the teacher's own package-level `rules` ruleset in compiler/gen.
var rules = inflect.NewDefaultRuleset()

// Pluralize returns the plural form of name, used by the table-ddl
// generator for table names and by the query-schema generator for Query
// field names.
func Pluralize(name string) string {
	return rules.Pluralize(name)
}

// Singularize returns the singular form of name.
func Singularize(name string) string {
	return rules.Singularize(name)
}
