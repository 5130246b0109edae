// Package schemaops implements schema comparison, merge and lint
// (spec.md §2 "Schema Ops"). These are the companion read-side operations
// to the Migration Engine (package migrate), which consumes Diff's output
// to build its BreakingChange analysis.
//
// Grounded on dialect/sql/schema/validate.go's ValidationResult shape
// (reused here as LintResult): stdlib only, since no example repo ships a
// three-way schema-diff/merge library.
package schemaops

import (
	"fmt"
	"sort"

	"github.com/schemaforge/schemaforge/model"
)

// ChangeKind classifies one entry of a Diff.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// Change is one difference between two schemas, scoped to a single named
// element (a class, slot, enum or type).
type Change struct {
	Element string
	Kind    ChangeKind
	Detail  string
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s: %s", c.Kind, c.Element, c.Detail)
}

// Diff is the full set of differences between two schema versions.
type Diff struct {
	Classes []Change
	Slots   []Change
	Enums   []Change
	Types   []Change
}

// All returns every Change across all four categories, in category order
// (classes, slots, enums, types) then insertion order within each.
func (d *Diff) All() []Change {
	out := make([]Change, 0, len(d.Classes)+len(d.Slots)+len(d.Enums)+len(d.Types))
	out = append(out, d.Classes...)
	out = append(out, d.Slots...)
	out = append(out, d.Enums...)
	out = append(out, d.Types...)
	return out
}

// ComputeDiff compares from against to and returns every added, removed or
// modified class/slot/enum/type.
func ComputeDiff(from, to *model.Schema) *Diff {
	d := &Diff{}
	d.Classes = diffClasses(from, to)
	d.Slots = diffSlots(from, to)
	d.Enums = diffEnums(from, to)
	d.Types = diffTypes(from, to)
	return d
}

func diffClasses(from, to *model.Schema) []Change {
	var out []Change
	for _, name := range to.Classes.Keys() {
		if !from.Classes.Has(name) {
			out = append(out, Change{Element: name, Kind: Added, Detail: "class added"})
		}
	}
	for _, name := range from.Classes.Keys() {
		oldCls, _ := from.Classes.Get(name)
		newCls, ok := to.Classes.Get(name)
		if !ok {
			out = append(out, Change{Element: name, Kind: Removed, Detail: "class removed"})
			continue
		}
		if detail, changed := diffClassDefinition(oldCls, newCls); changed {
			out = append(out, Change{Element: name, Kind: Modified, Detail: detail})
		}
	}
	return out
}

func diffClassDefinition(a, b *model.ClassDefinition) (string, bool) {
	var details []string
	if a.IsA != b.IsA {
		details = append(details, fmt.Sprintf("is_a: %q -> %q", a.IsA, b.IsA))
	}
	if a.Abstract != b.Abstract {
		details = append(details, fmt.Sprintf("abstract: %v -> %v", a.Abstract, b.Abstract))
	}
	oldSlots := make(map[string]bool, len(a.Slots))
	for _, s := range a.Slots {
		oldSlots[s] = true
	}
	newSlots := make(map[string]bool, len(b.Slots))
	for _, s := range b.Slots {
		newSlots[s] = true
	}
	for _, s := range sortedKeys(newSlots) {
		if !oldSlots[s] {
			details = append(details, fmt.Sprintf("slot %q added to class", s))
		}
	}
	for _, s := range sortedKeys(oldSlots) {
		if !newSlots[s] {
			details = append(details, fmt.Sprintf("slot %q removed from class", s))
		}
	}
	if len(details) == 0 {
		return "", false
	}
	return joinDetails(details), true
}

func diffSlots(from, to *model.Schema) []Change {
	var out []Change
	for _, name := range to.Slots.Keys() {
		if !from.Slots.Has(name) {
			out = append(out, Change{Element: name, Kind: Added, Detail: "slot added"})
		}
	}
	for _, name := range from.Slots.Keys() {
		oldSlot, _ := from.Slots.Get(name)
		newSlot, ok := to.Slots.Get(name)
		if !ok {
			out = append(out, Change{Element: name, Kind: Removed, Detail: "slot removed"})
			continue
		}
		if detail, changed := diffSlotDefinition(oldSlot, newSlot); changed {
			out = append(out, Change{Element: name, Kind: Modified, Detail: detail})
		}
	}
	return out
}

func diffSlotDefinition(a, b *model.SlotDefinition) (string, bool) {
	var details []string
	if a.Range != b.Range {
		details = append(details, fmt.Sprintf("range: %q -> %q", a.Range, b.Range))
	}
	if !a.Required && b.Required {
		details = append(details, "required constraint added")
	}
	if a.Required && !b.Required {
		details = append(details, "required constraint removed")
	}
	if a.Multivalued && !b.Multivalued {
		details = append(details, "cardinality narrowed: multivalued -> single")
	}
	if len(details) == 0 {
		return "", false
	}
	return joinDetails(details), true
}

func diffEnums(from, to *model.Schema) []Change {
	var out []Change
	for _, name := range to.Enums.Keys() {
		if !from.Enums.Has(name) {
			out = append(out, Change{Element: name, Kind: Added, Detail: "enum added"})
		}
	}
	for _, name := range from.Enums.Keys() {
		oldEnum, _ := from.Enums.Get(name)
		newEnum, ok := to.Enums.Get(name)
		if !ok {
			out = append(out, Change{Element: name, Kind: Removed, Detail: "enum removed"})
			continue
		}
		oldValues := make(map[string]bool, len(oldEnum.PermissibleValues))
		for _, v := range oldEnum.PermissibleValues {
			oldValues[v.Text] = true
		}
		newValues := make(map[string]bool, len(newEnum.PermissibleValues))
		for _, v := range newEnum.PermissibleValues {
			newValues[v.Text] = true
		}
		var removed []string
		for _, v := range sortedKeys(oldValues) {
			if !newValues[v] {
				removed = append(removed, v)
			}
		}
		if len(removed) > 0 {
			out = append(out, Change{Element: name, Kind: Modified, Detail: fmt.Sprintf("values removed: %s", joinDetails(removed))})
		}
	}
	return out
}

func diffTypes(from, to *model.Schema) []Change {
	var out []Change
	for _, name := range to.Types.Keys() {
		if !from.Types.Has(name) {
			out = append(out, Change{Element: name, Kind: Added, Detail: "type added"})
		}
	}
	for _, name := range from.Types.Keys() {
		oldType, _ := from.Types.Get(name)
		newType, ok := to.Types.Get(name)
		if !ok {
			out = append(out, Change{Element: name, Kind: Removed, Detail: "type removed"})
			continue
		}
		if oldType.BaseType != newType.BaseType {
			out = append(out, Change{Element: name, Kind: Modified, Detail: fmt.Sprintf("base_type: %q -> %q", oldType.BaseType, newType.BaseType)})
		}
	}
	return out
}

// sortedKeys returns m's keys in sorted order so diff detail text is
// reproducible across runs rather than dependent on Go's randomized map
// iteration.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinDetails(details []string) string {
	out := details[0]
	for _, d := range details[1:] {
		out += "; " + d
	}
	return out
}
