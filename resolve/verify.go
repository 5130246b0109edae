package resolve

import (
	"fmt"
	"regexp"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// verifySchema checks the schema's well-formedness invariants (§3) before
// any resolution work happens: dangling is_a/mixin references, slot
// constraint invariants (pattern compiles, minimum <= maximum, identifier
// implies required), enum permissible-value uniqueness, and acyclic type
// base_type chains. Downstream components (generators, the validation
// engine, the migration engine) rely on these holding and do not re-check
// them.
func verifySchema(schema *model.Schema) error {
	for _, name := range schema.Classes.Keys() {
		cls, _ := schema.Classes.Get(name)
		if name == "" {
			return schemaforge.NewSchemaValidationError(name, "class name is empty")
		}
		if cls.IsA != "" && !schema.Classes.Has(cls.IsA) {
			return schemaforge.NewSchemaValidationError(name,
				fmt.Sprintf("is_a references unknown class %q", cls.IsA))
		}
		for _, mixin := range cls.Mixins {
			if !schema.Classes.Has(mixin) {
				return schemaforge.NewSchemaValidationError(name,
					fmt.Sprintf("mixin references unknown class %q", mixin))
			}
		}
		if cls.SlotUsage != nil {
			for _, slotName := range cls.SlotUsage.Keys() {
				usage, _ := cls.SlotUsage.Get(slotName)
				if err := verifySlot(slotName, usage); err != nil {
					return err
				}
			}
		}
		if cls.Attributes != nil {
			for _, attrName := range cls.Attributes.Keys() {
				attr, _ := cls.Attributes.Get(attrName)
				if err := verifySlot(attrName, attr); err != nil {
					return err
				}
			}
		}
	}

	for _, name := range schema.Slots.Keys() {
		slot, _ := schema.Slots.Get(name)
		if err := verifySlot(name, slot); err != nil {
			return err
		}
	}

	for _, name := range schema.Enums.Keys() {
		enumDef, _ := schema.Enums.Get(name)
		seen := make(map[string]bool, len(enumDef.PermissibleValues))
		for _, pv := range enumDef.PermissibleValues {
			if pv.Text == "" {
				return schemaforge.NewSchemaValidationError(name, "permissible value has empty text")
			}
			if seen[pv.Text] {
				return schemaforge.NewSchemaValidationError(name,
					fmt.Sprintf("duplicate permissible value %q", pv.Text))
			}
			seen[pv.Text] = true
		}
	}

	if err := verifyTypeChains(schema); err != nil {
		return err
	}

	return verifyIdentifierSlots(schema)
}

func verifySlot(name string, slot *model.SlotDefinition) error {
	if slot == nil {
		return nil
	}
	if slot.Identifier && !slot.Required {
		return schemaforge.NewSchemaValidationError(name, "identifier slots must be required")
	}
	if slot.MinimumValue != nil && slot.MaximumValue != nil && *slot.MinimumValue > *slot.MaximumValue {
		return schemaforge.NewSchemaValidationError(name,
			fmt.Sprintf("minimum_value %v exceeds maximum_value %v", *slot.MinimumValue, *slot.MaximumValue))
	}
	if slot.Pattern != "" {
		if _, err := regexp.Compile(slot.Pattern); err != nil {
			return schemaforge.NewSchemaValidationError(name,
				fmt.Sprintf("pattern %q does not compile: %v", slot.Pattern, err))
		}
	}
	return nil
}

// verifyTypeChains runs the three-color cycle detection independently over
// type base_type chains (§4.1 "Applied to is_a ∪ mixins and independently
// to type.base_type"): a type's base_type may name another type rather
// than a primitive, and such chains must terminate at a primitive.
func verifyTypeChains(schema *model.Schema) error {
	state := make(map[string]dfsState, schema.Types.Len())

	var walk func(name string, path []string) error
	walk = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return schemaforge.NewInheritanceCycleError(name, append(path, name))
		case visited:
			return nil
		}
		state[name] = visiting

		t, _ := schema.Types.Get(name)
		base := string(t.BaseType)
		switch {
		case base == "" || model.IsPrimitive(base):
		case schema.Types.Has(base):
			if err := walk(base, append(path, name)); err != nil {
				return err
			}
		default:
			return schemaforge.NewSchemaValidationError(name,
				fmt.Sprintf("base_type %q is neither a primitive nor a declared type", base))
		}

		state[name] = visited
		return nil
	}

	for _, name := range schema.Types.Keys() {
		if err := walk(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// verifyIdentifierSlots enforces "at most one identifier per class
// hierarchy" (§3): the class's own slot list plus every ancestor's may
// contribute only a single identifier-flagged slot between them.
func verifyIdentifierSlots(schema *model.Schema) error {
	countOwn := func(cls *model.ClassDefinition) int {
		n := 0
		for _, slotName := range cls.Slots {
			if slot, ok := schema.Slots.Get(slotName); ok && slot.Identifier {
				n++
			}
		}
		if cls.Attributes != nil {
			for _, attrName := range cls.Attributes.Keys() {
				attr, _ := cls.Attributes.Get(attrName)
				if attr != nil && attr.Identifier {
					n++
				}
			}
		}
		return n
	}

	for _, name := range schema.Classes.Keys() {
		cls, _ := schema.Classes.Get(name)
		n := countOwn(cls)
		ancestors, err := ancestorNames(schema, name)
		if err != nil {
			// Cycle errors surface from the main resolution walk with a
			// richer path; don't duplicate them here.
			continue
		}
		for _, anc := range ancestors {
			if ancCls, ok := schema.Classes.Get(anc); ok {
				n += countOwn(ancCls)
			}
		}
		if n > 1 {
			return schemaforge.NewSchemaValidationError(name,
				fmt.Sprintf("class hierarchy declares %d identifier slots, at most one is allowed", n))
		}
	}
	return nil
}

func ancestorNames(schema *model.Schema, class string) ([]string, error) {
	order, _, err := ancestorsOf(schema, class, make(map[string]dfsState))
	return order, err
}

// ResolveTypeChain walks rng through type-definition base_type chains to
// its terminal primitive, returning the chain's first declared pattern
// (the nearest refinement wins). A rng that is already a primitive is
// returned unchanged; an unresolvable rng falls back to string, matching
// the graph-schema generator's attribute-type fallback (§4.3).
func ResolveTypeChain(schema *model.Schema, rng string) (model.Primitive, string) {
	pattern := ""
	seen := make(map[string]bool)
	for rng != "" && !model.IsPrimitive(rng) {
		if seen[rng] {
			break
		}
		seen[rng] = true
		t, ok := schema.Types.Get(rng)
		if !ok {
			return model.PrimitiveString, pattern
		}
		if pattern == "" {
			pattern = t.Pattern
		}
		rng = string(t.BaseType)
	}
	if rng == "" || !model.IsPrimitive(rng) {
		return model.PrimitiveString, pattern
	}
	return model.Primitive(rng), pattern
}
