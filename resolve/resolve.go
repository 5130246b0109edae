// Package resolve implements the Resolver (spec §4.1): inheritance
// flattening, slot-usage overrides, prefix/URI resolution and identifier
// canonicalization.
//
// Resolve never mutates the input Schema. It produces a separate,
// immutable Resolved value that downstream components (validate, gen,
// schemaops, migrate) treat as a shareable snapshot (§5 "Shared-resource
// policy"). This mirrors the teacher's split between the parsed
// compiler/load.Schema and the generated gen.Graph/gen.Type view.
package resolve

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// EffectiveSlot is the merged view of a slot as seen by a particular class:
// top-level definition overridden by ancestor slot_usage, then the class's
// own slot_usage, then any inline attribute (§4.1 precedence order,
// lowest to highest).
type EffectiveSlot struct {
	*model.SlotDefinition

	// Owner is the class that contributed this slot to the effective list
	// (the class on which it is directly declared, inherited, or attributed).
	Owner string

	// OverriddenBy lists, in application order, the ancestors (and
	// possibly the class itself) whose slot_usage contributed an override.
	// Empty when the slot has no overrides. Kept for debugging/diffing,
	// mirroring the teacher's Position{MixedIn,MixinIndex} provenance
	// bookkeeping in compiler/load/schema.go.
	OverriddenBy []string

	// FromAttribute is true when the slot originates from the class's
	// inline `attributes` map rather than schema.slots.
	FromAttribute bool
}

// ResolvedClass is a ClassDefinition plus its effective, ordered slot list.
type ResolvedClass struct {
	*model.ClassDefinition

	// Ancestors lists is_a/mixin ancestors in stable, first-visit-wins
	// depth-first order (root-most last is NOT guaranteed; callers that
	// need root-to-self order should reverse the is_a chain specifically,
	// see IsAChain).
	Ancestors []string

	// IsAChain lists the is_a chain from the class itself down to the
	// ultimate root (self first).
	IsAChain []string

	EffectiveSlots []*EffectiveSlot
}

// Resolved is the immutable resolved view of a Schema.
type Resolved struct {
	Schema  *model.Schema
	Classes map[string]*ResolvedClass
	// ClassOrder preserves schema.Classes insertion order for deterministic
	// iteration by downstream generators.
	ClassOrder []string
}

// Resolve produces the resolved view of schema. It is pure: schema is never
// mutated (spec.md §9 design note).
func Resolve(schema *model.Schema) (*Resolved, error) {
	if schema == nil {
		return nil, schemaforge.NewSchemaValidationError("schema", "schema is nil")
	}
	if err := verifySchema(schema); err != nil {
		return nil, err
	}

	r := &Resolved{
		Schema:     schema,
		Classes:    make(map[string]*ResolvedClass),
		ClassOrder: schema.Classes.Keys(),
	}

	for _, name := range r.ClassOrder {
		cls, _ := schema.Classes.Get(name)
		ancestors, isaChain, err := ancestorsOf(schema, name, make(map[string]dfsState))
		if err != nil {
			return nil, err
		}
		effective, err := collectEffectiveSlots(schema, cls, ancestors)
		if err != nil {
			return nil, err
		}
		r.Classes[name] = &ResolvedClass{
			ClassDefinition: cls,
			Ancestors:       ancestors,
			IsAChain:        isaChain,
			EffectiveSlots:  effective,
		}
	}

	return r, nil
}

// Idempotent reports whether re-resolving r.Schema produces an equivalent
// Resolved value (§8 "Resolution idempotence": resolve(resolve(s)) =
// resolve(s)). Since Resolve never mutates schema, this is true by
// construction; the helper exists so callers/tests can assert it directly
// rather than relying on that invariant implicitly. Equality is structural
// (github.com/google/go-cmp), not pointer identity, since re-resolving
// builds an entirely new Resolved tree.
func (r *Resolved) Idempotent() (bool, error) {
	again, err := Resolve(r.Schema)
	if err != nil {
		return false, err
	}
	return cmp.Equal(r.Classes, again.Classes) && cmp.Equal(r.ClassOrder, again.ClassOrder), nil
}

// Diff returns a human-readable structural diff between r and other's
// resolved classes, empty when they are equivalent. Intended for test
// assertions and for the schema-watch loop to explain why a replan changed
// the resolved view.
func (r *Resolved) Diff(other *Resolved) string {
	return cmp.Diff(r.Classes, other.Classes)
}

// Class looks up a resolved class by name.
func (r *Resolved) Class(name string) (*ResolvedClass, bool) {
	c, ok := r.Classes[name]
	return c, ok
}

// dfsState is the three-color marker used by cycle detection.
type dfsState int

const (
	unvisited dfsState = iota
	visiting
	visited
)

// ancestorsOf walks is_a then mixins depth-first, yielding each ancestor
// exactly once in a stable, first-visit-wins order, and fails with
// InheritanceCycleError if class re-enters a node still being visited.
func ancestorsOf(schema *model.Schema, class string, state map[string]dfsState) ([]string, []string, error) {
	var order []string
	var isaChain []string
	seen := make(map[string]bool)
	path := []string{class}

	var walk func(name string, collectIsA bool) error
	walk = func(name string, collectIsA bool) error {
		switch state[name] {
		case visiting:
			return schemaforge.NewInheritanceCycleError(name, append(append([]string{}, path...), name))
		case visited:
			return nil
		}
		state[name] = visiting
		path = append(path, name)

		cls, ok := schema.Classes.Get(name)
		if ok && cls != nil {
			if cls.IsA != "" {
				if collectIsA {
					isaChain = append(isaChain, cls.IsA)
				}
				if !seen[cls.IsA] {
					seen[cls.IsA] = true
					order = append(order, cls.IsA)
				}
				if err := walk(cls.IsA, collectIsA); err != nil {
					return err
				}
			}
			for _, mx := range cls.Mixins {
				if !seen[mx] {
					seen[mx] = true
					order = append(order, mx)
				}
				if err := walk(mx, false); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[name] = visited
		return nil
	}

	if err := walk(class, true); err != nil {
		return nil, nil, err
	}
	return order, append([]string{class}, isaChain...), nil
}

// Ancestors is the exported entry point matching spec.md §4.1's
// `ancestors(class)` operation.
func Ancestors(schema *model.Schema, class string) ([]string, error) {
	order, _, err := ancestorsOf(schema, class, make(map[string]dfsState))
	return order, err
}

// collectEffectiveSlots implements spec.md §4.1's
// `collect_effective_slots(class)`.
func collectEffectiveSlots(schema *model.Schema, cls *model.ClassDefinition, ancestors []string) ([]*EffectiveSlot, error) {
	merged := make(map[string]*EffectiveSlot)
	var order []string

	addBase := func(name string) error {
		base, ok := schema.Slots.Get(name)
		if !ok {
			// §3 invariant: a name in `slots` may instead resolve in a
			// slot_usage or attributes entry of the class or an ancestor;
			// such slots enter the effective list when those overrides are
			// applied below, keeping this position in the order.
			if resolvesViaOverride(schema, cls, ancestors, name) {
				if _, present := merged[name]; !present {
					order = append(order, name)
					merged[name] = &EffectiveSlot{Owner: cls.Name}
				}
				return nil
			}
			return schemaforge.NewSchemaValidationError(name, fmt.Sprintf("slot %q not found in schema.slots", name))
		}
		if _, ok := merged[name]; !ok {
			order = append(order, name)
		}
		merged[name] = &EffectiveSlot{SlotDefinition: base.Clone(), Owner: cls.Name}
		return nil
	}

	// 1. top-level slot definitions referenced by the class's `slots` list.
	for _, name := range cls.Slots {
		if err := addBase(name); err != nil {
			return nil, err
		}
	}

	// 2. slot_usage overrides walked root -> self. ancestorsOf returns a
	// first-visit-wins order with the nearest ancestor first; we need
	// root-to-self precedence (spec.md §4.1: "precedence order, lowest to
	// highest"), so we walk the reversed ancestor order before applying
	// the class's own overrides.
	reversed := make([]string, len(ancestors))
	for i, a := range ancestors {
		reversed[len(ancestors)-1-i] = a
	}
	for _, anc := range reversed {
		ancCls, ok := schema.Classes.Get(anc)
		if !ok {
			continue
		}
		if ancCls.Attributes != nil {
			applyAttributes(merged, &order, ancCls.Attributes, anc)
		}
		if ancCls.SlotUsage != nil {
			applyOverrides(schema, merged, &order, ancCls.SlotUsage, anc)
		}
	}

	// 3. the class's own slot_usage.
	if cls.SlotUsage != nil {
		applyOverrides(schema, merged, &order, cls.SlotUsage, cls.Name)
	}

	// 4. inline attributes entry (highest precedence).
	if cls.Attributes != nil {
		applyAttributes(merged, &order, cls.Attributes, cls.Name)
	}

	out := make([]*EffectiveSlot, 0, len(order))
	for _, name := range order {
		out = append(out, merged[name])
	}
	return out, nil
}

// resolvesViaOverride reports whether name is declared by a slot_usage or
// attributes entry of cls or one of its ancestors, satisfying the §3
// invariant for `slots` entries absent from schema.slots.
func resolvesViaOverride(schema *model.Schema, cls *model.ClassDefinition, ancestors []string, name string) bool {
	declares := func(c *model.ClassDefinition) bool {
		if c == nil {
			return false
		}
		if c.SlotUsage != nil && c.SlotUsage.Has(name) {
			return true
		}
		return c.Attributes != nil && c.Attributes.Has(name)
	}
	if declares(cls) {
		return true
	}
	for _, anc := range ancestors {
		if ancCls, ok := schema.Classes.Get(anc); ok && declares(ancCls) {
			return true
		}
	}
	return false
}

// applyAttributes merges an attributes map into the effective view, marking
// each contributed slot as attribute-originated.
func applyAttributes(merged map[string]*EffectiveSlot, order *[]string, attrs *model.OrderedMap[*model.SlotDefinition], owner string) {
	for _, name := range attrs.Keys() {
		attr, _ := attrs.Get(name)
		if _, ok := merged[name]; !ok {
			*order = append(*order, name)
			merged[name] = &EffectiveSlot{Owner: owner}
		}
		es := merged[name]
		es.SlotDefinition = mergeSlot(es.SlotDefinition, attr)
		if es.SlotDefinition.Name == "" {
			es.SlotDefinition.Name = name
		}
		es.FromAttribute = true
	}
}

func applyOverrides(schema *model.Schema, merged map[string]*EffectiveSlot, order *[]string, usage *model.OrderedMap[*model.SlotDefinition], owner string) {
	for _, name := range usage.Keys() {
		override, _ := usage.Get(name)
		if _, ok := merged[name]; !ok {
			*order = append(*order, name)
			es := &EffectiveSlot{Owner: owner}
			// A slot_usage naming a slot outside the class's own `slots`
			// list still layers over the top-level definition (§4.1
			// precedence level 1).
			if base, ok := schema.Slots.Get(name); ok {
				es.SlotDefinition = base.Clone()
			}
			merged[name] = es
		}
		es := merged[name]
		es.SlotDefinition = mergeSlot(es.SlotDefinition, override)
		if es.SlotDefinition.Name == "" {
			es.SlotDefinition.Name = name
		}
		es.OverriddenBy = append(es.OverriddenBy, owner)
	}
}

// mergeSlot returns a new SlotDefinition where every non-zero field of
// override replaces the corresponding field of base; unspecified fields
// keep base's value (§4.1: "a later field value replaces an earlier one;
// unspecified fields inherit"). Boolean flags are bare bools on the model,
// so an override can only strengthen them: a false flag is
// indistinguishable from an unspecified one, and a slot_usage fragment
// therefore cannot downgrade required: true back to false.
func mergeSlot(base, override *model.SlotDefinition) *model.SlotDefinition {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}
	out := base.Clone()
	out.Name = base.Name
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Range != "" {
		out.Range = override.Range
	}
	if override.Domain != "" {
		out.Domain = override.Domain
	}
	if override.Required {
		out.Required = true
	}
	if override.Multivalued {
		out.Multivalued = true
	}
	if override.Identifier {
		out.Identifier = true
	}
	if override.Inlined {
		out.Inlined = true
	}
	if override.InlinedAsList {
		out.InlinedAsList = true
	}
	if override.Pattern != "" {
		out.Pattern = override.Pattern
	}
	if override.MinimumValue != nil {
		v := *override.MinimumValue
		out.MinimumValue = &v
	}
	if override.MaximumValue != nil {
		v := *override.MaximumValue
		out.MaximumValue = &v
	}
	if len(override.PermissibleValues) > 0 {
		out.PermissibleValues = append([]model.PermissibleValue(nil), override.PermissibleValues...)
	}
	if out.Name == "" {
		out.Name = override.Name
	}
	return out
}
