package migrate

import (
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/schemaops"
)

// AnalyzeOptions carries explicit rename hints. §4.5 "rename inferred only
// when explicitly mapped" — without an entry here, a removed class/slot is
// always treated as a removal, never guessed as a rename.
type AnalyzeOptions struct {
	ClassRenames map[string]string // old name -> new name
	SlotRenames  map[string]string
}

// Analyze walks from and to and emits one BreakingChange per incompatibility
// named in §4.5's change catalogue, reusing schemaops.ComputeDiff as the
// single structural-diff pass both Diff and Analyze share.
func Analyze(from, to *model.Schema, opts AnalyzeOptions) []BreakingChange {
	diff := schemaops.ComputeDiff(from, to)
	var changes []BreakingChange

	for _, c := range diff.Classes {
		switch c.Kind {
		case schemaops.Removed:
			if renameTo, ok := opts.ClassRenames[c.Element]; ok && to.Classes.Has(renameTo) {
				changes = append(changes, BreakingChange{
					Kind: ClassRenamed, Element: c.Element, RenameTo: renameTo,
					Detail:   fmt.Sprintf("class %q renamed to %q", c.Element, renameTo),
					Strategy: MigrationStrategy{Kind: StrategyAutomatic, TransformName: "rename_field"},
				})
			} else {
				changes = append(changes, BreakingChange{
					Kind: ClassRemoved, Element: c.Element, Detail: c.Detail,
					Strategy: MigrationStrategy{Kind: StrategyDataLoss, Warning: fmt.Sprintf("all instances of %q will be discarded", c.Element)},
				})
			}
		}
	}

	for _, c := range diff.Slots {
		switch c.Kind {
		case schemaops.Removed:
			if renameTo, ok := opts.SlotRenames[c.Element]; ok && to.Slots.Has(renameTo) {
				changes = append(changes, BreakingChange{
					Kind: SlotRenamed, Element: c.Element, RenameTo: renameTo,
					Detail:   fmt.Sprintf("slot %q renamed to %q", c.Element, renameTo),
					Strategy: MigrationStrategy{Kind: StrategyAutomatic, TransformName: "rename_field"},
				})
			} else {
				changes = append(changes, BreakingChange{
					Kind: SlotRemoved, Element: c.Element, Detail: c.Detail,
					Strategy: MigrationStrategy{Kind: StrategyDataLoss, Warning: fmt.Sprintf("field %q will be discarded from every record", c.Element)},
				})
			}
		case schemaops.Modified:
			changes = append(changes, classifySlotChange(c, to)...)
		}
	}

	for _, c := range diff.Enums {
		if c.Kind == schemaops.Modified {
			changes = append(changes, BreakingChange{
				Kind: EnumValuesRemoved, Element: c.Element, Detail: c.Detail,
				Strategy: MigrationStrategy{Kind: StrategyDataLoss, Warning: "records using a removed enum value will fail validation"},
			})
		}
	}

	return changes
}

// classifySlotChange splits a schemaops.Modified slot Change (which may
// bundle several field-level differences in one Detail string) into the
// §4.5 breaking-change kinds it actually implies.
func classifySlotChange(c schemaops.Change, to *model.Schema) []BreakingChange {
	var out []BreakingChange
	slot, _ := to.Slots.Get(c.Element)
	if strings.Contains(c.Detail, "range:") {
		out = append(out, BreakingChange{
			Kind: TypeChanged, Element: c.Element, Detail: c.Detail,
			Strategy: MigrationStrategy{Kind: StrategyAutomatic, TransformName: "coerce_type"},
		})
	}
	if strings.Contains(c.Detail, "required constraint added") {
		strategy := MigrationStrategy{Kind: StrategyManual, Instructions: fmt.Sprintf("backfill a value for %q on every existing record", c.Element)}
		if slot != nil {
			strategy = MigrationStrategy{Kind: StrategyDefaultValue, Default: zeroValueFor(slot.Range)}
		}
		out = append(out, BreakingChange{Kind: RequiredAdded, Element: c.Element, Detail: c.Detail, Strategy: strategy})
	}
	if strings.Contains(c.Detail, "cardinality narrowed") {
		out = append(out, BreakingChange{
			Kind: CardinalityNarrowed, Element: c.Element, Detail: c.Detail,
			Strategy: MigrationStrategy{Kind: StrategyManual, Instructions: fmt.Sprintf("collapse %q's values to a single value per record", c.Element)},
		})
	}
	return out
}

func zeroValueFor(rng string) any {
	switch rng {
	case "integer":
		return 0
	case "float", "double", "decimal":
		return 0.0
	case "boolean":
		return false
	default:
		return ""
	}
}
