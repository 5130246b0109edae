// Package model holds the typed, ordered representation of a schema: the
// root Schema container plus ClassDefinition, SlotDefinition,
// EnumDefinition, TypeDefinition, Rule and Prefix (spec §3).
//
// Definitions are stored in OrderedMaps so that iteration order matches
// insertion order — generator output determinism depends on it. The model
// is a pure value type: it does not enforce its own invariants (acyclic
// is_a chains, resolvable slot references, ...); that is the Resolver's
// job (package resolve).
package model

// Primitive is a built-in scalar range.
type Primitive string

// Recognized primitive ranges (§3).
const (
	PrimitiveString     Primitive = "string"
	PrimitiveInteger    Primitive = "integer"
	PrimitiveFloat      Primitive = "float"
	PrimitiveDouble     Primitive = "double"
	PrimitiveDecimal    Primitive = "decimal"
	PrimitiveBoolean    Primitive = "boolean"
	PrimitiveDate       Primitive = "date"
	PrimitiveDatetime   Primitive = "datetime"
	PrimitiveTime       Primitive = "time"
	PrimitiveURI        Primitive = "uri"
	PrimitiveURIorCURIE Primitive = "uriorcurie"
	PrimitiveNCName     Primitive = "ncname"
	PrimitiveCURIE      Primitive = "curie"
)

// IsPrimitive reports whether name names a built-in scalar range.
func IsPrimitive(name string) bool {
	switch Primitive(name) {
	case PrimitiveString, PrimitiveInteger, PrimitiveFloat, PrimitiveDouble,
		PrimitiveDecimal, PrimitiveBoolean, PrimitiveDate, PrimitiveDatetime,
		PrimitiveTime, PrimitiveURI, PrimitiveURIorCURIE, PrimitiveNCName,
		PrimitiveCURIE:
		return true
	default:
		return false
	}
}

// Prefix maps a short prefix to a namespace URI. Prefix may itself be a
// complex CURIE (prefix_prefix / prefix_reference), mirrored here by the
// two optional fields.
type Prefix struct {
	PrefixPrefix    string `yaml:"prefix_prefix,omitempty" json:"prefix_prefix,omitempty"`
	PrefixReference string `yaml:"prefix_reference" json:"prefix_reference"`
}

// Schema is the root container: an ordered mapping of named definitions.
type Schema struct {
	ID             string             `yaml:"id" json:"id"`
	Name           string             `yaml:"name" json:"name"`
	Version        string             `yaml:"version,omitempty" json:"version,omitempty"`
	Description    string             `yaml:"description,omitempty" json:"description,omitempty"`
	DefaultPrefix  string             `yaml:"default_prefix,omitempty" json:"default_prefix,omitempty"`
	Prefixes       *OrderedMap[Prefix]           `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
	Classes        *OrderedMap[*ClassDefinition] `yaml:"classes,omitempty" json:"classes,omitempty"`
	Slots          *OrderedMap[*SlotDefinition]  `yaml:"slots,omitempty" json:"slots,omitempty"`
	Types          *OrderedMap[*TypeDefinition]  `yaml:"types,omitempty" json:"types,omitempty"`
	Enums          *OrderedMap[*EnumDefinition]  `yaml:"enums,omitempty" json:"enums,omitempty"`
	Subsets        *OrderedMap[string]           `yaml:"subsets,omitempty" json:"subsets,omitempty"`
	Imports        []string           `yaml:"imports,omitempty" json:"imports,omitempty"`
}

// NewSchema returns an empty Schema with all ordered maps initialized.
func NewSchema(id, name string) *Schema {
	return &Schema{
		ID:       id,
		Name:     name,
		Prefixes: NewOrderedMap[Prefix](),
		Classes:  NewOrderedMap[*ClassDefinition](),
		Slots:    NewOrderedMap[*SlotDefinition](),
		Types:    NewOrderedMap[*TypeDefinition](),
		Enums:    NewOrderedMap[*EnumDefinition](),
		Subsets:  NewOrderedMap[string](),
	}
}

// ClassDefinition describes a named record type.
type ClassDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	IsA    string   `yaml:"is_a,omitempty" json:"is_a,omitempty"`
	Mixins []string `yaml:"mixins,omitempty" json:"mixins,omitempty"`

	Abstract bool `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Mixin    bool `yaml:"mixin,omitempty" json:"mixin,omitempty"`
	TreeRoot bool `yaml:"tree_root,omitempty" json:"tree_root,omitempty"`

	Slots      []string                        `yaml:"slots,omitempty" json:"slots,omitempty"`
	SlotUsage  *OrderedMap[*SlotDefinition]     `yaml:"slot_usage,omitempty" json:"slot_usage,omitempty"`
	Attributes *OrderedMap[*SlotDefinition]     `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	UniqueKeys *OrderedMap[[]string]            `yaml:"unique_keys,omitempty" json:"unique_keys,omitempty"`
	Rules      []*Rule                          `yaml:"rules,omitempty" json:"rules,omitempty"`

	ClassURI    string `yaml:"class_uri,omitempty" json:"class_uri,omitempty"`
	SubclassOf  string `yaml:"subclass_of,omitempty" json:"subclass_of,omitempty"`
}

// NewClassDefinition returns an empty ClassDefinition with ordered maps
// initialized.
func NewClassDefinition(name string) *ClassDefinition {
	return &ClassDefinition{
		Name:       name,
		SlotUsage:  NewOrderedMap[*SlotDefinition](),
		Attributes: NewOrderedMap[*SlotDefinition](),
		UniqueKeys: NewOrderedMap[[]string](),
	}
}

// SlotDefinition describes a named property.
type SlotDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Range  string `yaml:"range,omitempty" json:"range,omitempty"`
	Domain string `yaml:"domain,omitempty" json:"domain,omitempty"`

	Required     bool `yaml:"required,omitempty" json:"required,omitempty"`
	Multivalued  bool `yaml:"multivalued,omitempty" json:"multivalued,omitempty"`
	Identifier   bool `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	Inlined      bool `yaml:"inlined,omitempty" json:"inlined,omitempty"`
	InlinedAsList bool `yaml:"inlined_as_list,omitempty" json:"inlined_as_list,omitempty"`

	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	MinimumValue *float64 `yaml:"minimum_value,omitempty" json:"minimum_value,omitempty"`
	MaximumValue *float64 `yaml:"maximum_value,omitempty" json:"maximum_value,omitempty"`

	PermissibleValues []PermissibleValue `yaml:"permissible_values,omitempty" json:"permissible_values,omitempty"`
}

// Clone returns a deep-enough copy of s suitable for slot_usage/attribute
// override merging (the pointer fields are copied, not shared, so later
// mutation of one override does not leak into another).
func (s *SlotDefinition) Clone() *SlotDefinition {
	if s == nil {
		return nil
	}
	clone := *s
	if s.MinimumValue != nil {
		v := *s.MinimumValue
		clone.MinimumValue = &v
	}
	if s.MaximumValue != nil {
		v := *s.MaximumValue
		clone.MaximumValue = &v
	}
	clone.PermissibleValues = append([]PermissibleValue(nil), s.PermissibleValues...)
	return &clone
}

// PermissibleValue is one entry of an EnumDefinition's value set.
type PermissibleValue struct {
	Text        string `yaml:"text" json:"text"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Meaning     string `yaml:"meaning,omitempty" json:"meaning,omitempty"`
}

// EnumDefinition describes a named set of permissible values.
type EnumDefinition struct {
	Name              string             `yaml:"name" json:"name"`
	Description       string             `yaml:"description,omitempty" json:"description,omitempty"`
	PermissibleValues []PermissibleValue `yaml:"permissible_values,omitempty" json:"permissible_values,omitempty"`
}

// TypeDefinition describes a named refinement of a primitive.
type TypeDefinition struct {
	Name        string    `yaml:"name" json:"name"`
	BaseType    Primitive `yaml:"base_type" json:"base_type"`
	Pattern     string    `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	URI         string    `yaml:"uri,omitempty" json:"uri,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}
