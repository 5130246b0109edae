package ioformat

import (
	"strconv"
	"strings"
)

// TermKind classifies one RDF term.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlank
	TermLiteral
)

// Term is one subject/predicate/object position of a Triple. DataType
// holds the literal's XSD datatype IRI (or its `xsd:` CURIE form) when
// Kind is TermLiteral.
type Term struct {
	Value    string
	Kind     TermKind
	DataType string
}

// Triple is one parsed RDF statement. Concrete text-format parsing (N-
// Triples/Turtle/JSON-LD) is out of scope (spec.md §1); this loader
// operates on already-parsed triples, matching the spec's framing that
// "loader/dumper contracts are specified; concrete format parsers are
// not".
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// GraphTripleOptions configures LoadTriples.
type GraphTripleOptions struct {
	// Policy skolemizes blank-node subjects/objects (§6).
	Policy SkolemPolicy
	// TypePredicate identifies the triple whose object names the subject's
	// class, e.g. "rdf:type". Defaults to "rdf:type" when empty.
	TypePredicate string
	// FieldName maps a predicate's Value to the DataInstance field name.
	// Defaults to the predicate's local name (text after the last '/' or
	// '#') when nil.
	FieldName func(predicate string) string
}

func (o GraphTripleOptions) typePredicate() string {
	if o.TypePredicate != "" {
		return o.TypePredicate
	}
	return "rdf:type"
}

func localName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i+1 < len(iri) {
		return iri[i+1:]
	}
	return iri
}

// convertTerm applies §6's value conversion rules: named node -> URI
// string; blank node -> skolemized form; typed literal with a recognized
// XSD datatype -> the corresponding scalar; otherwise string.
func convertTerm(t Term, policy SkolemPolicy) any {
	switch t.Kind {
	case TermIRI:
		return t.Value
	case TermBlank:
		if policy == nil {
			policy = NonePolicy{}
		}
		return policy.Skolemize(t.Value)
	case TermLiteral:
		switch t.DataType {
		case "xsd:integer", "http://www.w3.org/2001/XMLSchema#integer":
			if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				return n
			}
		case "xsd:decimal", "xsd:double", "xsd:float",
			"http://www.w3.org/2001/XMLSchema#decimal",
			"http://www.w3.org/2001/XMLSchema#double",
			"http://www.w3.org/2001/XMLSchema#float":
			if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
				return f
			}
		case "xsd:boolean", "http://www.w3.org/2001/XMLSchema#boolean":
			if b, err := strconv.ParseBool(t.Value); err == nil {
				return b
			}
		}
		return t.Value
	default:
		return t.Value
	}
}

// LoadTriples groups triples by subject and produces one DataInstance per
// subject, applying the §6 value-conversion rules and collapsing repeated
// subject/predicate pairs into a list field.
func LoadTriples(triples []Triple, opts GraphTripleOptions) []DataInstance {
	type subjectState struct {
		id        string
		className string
		fields    map[string][]any
		order     []string
	}
	order := make([]string, 0)
	bySubject := make(map[string]*subjectState)

	stateFor := func(subj Term) *subjectState {
		key := subj.Value
		st, ok := bySubject[key]
		if !ok {
			st = &subjectState{
				id:     convertTerm(subj, opts.Policy).(string),
				fields: make(map[string][]any),
			}
			bySubject[key] = st
			order = append(order, key)
		}
		return st
	}

	for _, tr := range triples {
		st := stateFor(tr.Subject)
		if tr.Predicate.Value == opts.typePredicate() {
			st.className = localName(tr.Object.Value)
			continue
		}
		field := localName(tr.Predicate.Value)
		if opts.FieldName != nil {
			if mapped := opts.FieldName(tr.Predicate.Value); mapped != "" {
				field = mapped
			}
		}
		if _, seen := st.fields[field]; !seen {
			st.order = append(st.order, field)
		}
		st.fields[field] = append(st.fields[field], convertTerm(tr.Object, opts.Policy))
	}

	out := make([]DataInstance, 0, len(order))
	for _, key := range order {
		st := bySubject[key]
		data := make(map[string]any, len(st.fields))
		for _, field := range st.order {
			values := st.fields[field]
			if len(values) == 1 {
				data[field] = values[0]
			} else {
				data[field] = values
			}
		}
		out = append(out, DataInstance{ClassName: st.className, Data: data, ID: st.id})
	}
	return out
}
