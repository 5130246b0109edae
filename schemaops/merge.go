package schemaops

import (
	"fmt"

	"github.com/schemaforge/schemaforge/model"
)

// ConflictStrategy resolves a name collision during Merge.
type ConflictStrategy int

const (
	// PreferBase keeps the base schema's definition on conflict.
	PreferBase ConflictStrategy = iota
	// PreferOverlay keeps the overlay schema's definition on conflict.
	PreferOverlay
	// FailOnConflict keeps the base schema's definition on conflict and
	// makes Merge return an error alongside the conflict list.
	FailOnConflict
)

// Conflict describes one name collision found during Merge.
type Conflict struct {
	Kind string // "class", "slot", "enum", "type"
	Name string
}

func (c Conflict) String() string { return fmt.Sprintf("%s %q defined in both schemas", c.Kind, c.Name) }

// MergeOptions configures Merge.
type MergeOptions struct {
	Strategy ConflictStrategy
}

// Merge combines base and overlay into a new Schema. Definitions unique to
// either side are carried over as-is, in base's iteration order followed by
// overlay's new entries; colliding names are resolved per opts.Strategy.
// With FailOnConflict, Merge still returns a best-effort merged schema (base
// wins) alongside the conflict list so callers can inspect both.
func Merge(base, overlay *model.Schema, opts MergeOptions) (*model.Schema, []Conflict, error) {
	out := model.NewSchema(base.ID, base.Name)
	out.Version = base.Version
	out.Description = base.Description
	out.DefaultPrefix = base.DefaultPrefix

	var conflicts []Conflict

	for _, name := range base.Prefixes.Keys() {
		p, _ := base.Prefixes.Get(name)
		out.Prefixes.Set(name, p)
	}
	for _, name := range overlay.Prefixes.Keys() {
		p, _ := overlay.Prefixes.Get(name)
		out.Prefixes.Set(name, p)
	}

	mergeClasses(base, overlay, out, opts, &conflicts)
	mergeSlots(base, overlay, out, opts, &conflicts)
	mergeEnums(base, overlay, out, opts, &conflicts)
	mergeTypes(base, overlay, out, opts, &conflicts)

	if opts.Strategy == FailOnConflict && len(conflicts) > 0 {
		return out, conflicts, fmt.Errorf("schemaops: merge has %d unresolved conflict(s)", len(conflicts))
	}
	return out, conflicts, nil
}

func mergeClasses(base, overlay, out *model.Schema, opts MergeOptions, conflicts *[]Conflict) {
	for _, name := range base.Classes.Keys() {
		cls, _ := base.Classes.Get(name)
		out.Classes.Set(name, cls)
	}
	for _, name := range overlay.Classes.Keys() {
		cls, _ := overlay.Classes.Get(name)
		if _, exists := base.Classes.Get(name); exists {
			*conflicts = append(*conflicts, Conflict{Kind: "class", Name: name})
			if opts.Strategy != PreferOverlay {
				continue
			}
		}
		out.Classes.Set(name, cls)
	}
}

func mergeSlots(base, overlay, out *model.Schema, opts MergeOptions, conflicts *[]Conflict) {
	for _, name := range base.Slots.Keys() {
		slot, _ := base.Slots.Get(name)
		out.Slots.Set(name, slot)
	}
	for _, name := range overlay.Slots.Keys() {
		slot, _ := overlay.Slots.Get(name)
		if _, exists := base.Slots.Get(name); exists {
			*conflicts = append(*conflicts, Conflict{Kind: "slot", Name: name})
			if opts.Strategy != PreferOverlay {
				continue
			}
		}
		out.Slots.Set(name, slot)
	}
}

func mergeEnums(base, overlay, out *model.Schema, opts MergeOptions, conflicts *[]Conflict) {
	for _, name := range base.Enums.Keys() {
		e, _ := base.Enums.Get(name)
		out.Enums.Set(name, e)
	}
	for _, name := range overlay.Enums.Keys() {
		e, _ := overlay.Enums.Get(name)
		if _, exists := base.Enums.Get(name); exists {
			*conflicts = append(*conflicts, Conflict{Kind: "enum", Name: name})
			if opts.Strategy != PreferOverlay {
				continue
			}
		}
		out.Enums.Set(name, e)
	}
}

func mergeTypes(base, overlay, out *model.Schema, opts MergeOptions, conflicts *[]Conflict) {
	for _, name := range base.Types.Keys() {
		t, _ := base.Types.Get(name)
		out.Types.Set(name, t)
	}
	for _, name := range overlay.Types.Keys() {
		t, _ := overlay.Types.Get(name)
		if _, exists := base.Types.Get(name); exists {
			*conflicts = append(*conflicts, Conflict{Kind: "type", Name: name})
			if opts.Strategy != PreferOverlay {
				continue
			}
		}
		out.Types.Set(name, t)
	}
}
