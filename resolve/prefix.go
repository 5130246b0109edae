package resolve

import (
	"sort"
	"strings"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// ExpandCURIE expands a `prefix:local` CURIE against the schema's prefix
// table, falling back to DefaultPrefix when the prefix component is empty
// (spec.md §4.1 `expand_curie`).
func ExpandCURIE(schema *model.Schema, curie string) (string, error) {
	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		prefix, local = "", curie
	}
	if prefix == "" {
		prefix = schema.DefaultPrefix
	}
	if prefix == "" {
		return "", schemaforge.NewUnknownPrefixError(prefix, curie)
	}
	p, ok := schema.Prefixes.Get(prefix)
	if !ok {
		return "", schemaforge.NewUnknownPrefixError(prefix, curie)
	}
	ns := p.PrefixReference
	return ns + local, nil
}

// ContractURI returns the CURIE form of uri using the longest matching
// namespace, ties broken by lexicographically smallest prefix name
// (spec.md §4.1 `contract_uri`). The bool result is false when no
// registered namespace is a prefix of uri.
func ContractURI(schema *model.Schema, uri string) (string, bool) {
	type candidate struct {
		prefix string
		ns     string
	}
	var candidates []candidate
	for _, name := range schema.Prefixes.Keys() {
		p, _ := schema.Prefixes.Get(name)
		if p.PrefixReference != "" && strings.HasPrefix(uri, p.PrefixReference) {
			candidates = append(candidates, candidate{prefix: name, ns: p.PrefixReference})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].ns) != len(candidates[j].ns) {
			return len(candidates[i].ns) > len(candidates[j].ns)
		}
		return candidates[i].prefix < candidates[j].prefix
	})
	best := candidates[0]
	return best.prefix + ":" + strings.TrimPrefix(uri, best.ns), true
}
