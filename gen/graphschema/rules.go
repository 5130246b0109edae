package graphschema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// opMap maps a SlotCondition comparator to its TypeQL-style operator
// (§4.3 "Value comparators emit ... using operator map").
var opMap = map[string]string{
	"eq": "==", "ne": "!=", "ge": ">=", "le": "<=", "gt": ">", "lt": "<",
}

// emitRules emits §4.3's Rule translation and multi-field unique-key
// constraints for every class, in dependency order.
func emitRules(sb *strings.Builder, r *resolve.Resolved, order []string, opts *gen.Options) {
	for _, name := range order {
		rc := r.Classes[name]
		for _, rule := range rc.Rules {
			emitRule(sb, name, rule, opts)
		}
		emitUniqueKeyRules(sb, name, rc.ClassDefinition, opts)
	}
}

func emitRule(sb *strings.Builder, className string, rule *model.Rule, opts *gen.Options) {
	branches := expandAnyOf(rule.Preconditions)
	for i, branch := range branches {
		title := rule.Title
		if len(branches) > 1 {
			title = fmt.Sprintf("%s-%d", rule.Title, i+1)
			fmt.Fprintf(sb, "# any_of branch %d of %d\n", i+1, len(branches))
		}
		fmt.Fprintf(sb, "rule %s:\nwhen {\n", ident(title))
		sb.WriteString(gen.Indent(opts.Indent, 1, fmt.Sprintf("$x isa %s;", ident(className))))
		sb.WriteByte('\n')
		writeConditions(sb, opts, branch, false)
		sb.WriteString("} then {\n")
		writeConditions(sb, opts, rule.Postconditions, true)
		sb.WriteString("};\n\n")
	}
}

// expandAnyOf flattens all_of into the same block and, per §4.3, produces
// one rule block per any_of branch.
func expandAnyOf(c *model.RuleConditions) []*model.RuleConditions {
	if c.IsEmpty() {
		return []*model.RuleConditions{c}
	}
	if len(c.AnyOf) > 0 {
		var out []*model.RuleConditions
		for _, branch := range c.AnyOf {
			out = append(out, flattenAllOf(branch))
		}
		return out
	}
	return []*model.RuleConditions{flattenAllOf(c)}
}

func flattenAllOf(c *model.RuleConditions) *model.RuleConditions {
	if c == nil || len(c.AllOf) == 0 {
		return c
	}
	merged := &model.RuleConditions{SlotConditions: make(map[string]model.SlotCondition)}
	for _, child := range c.AllOf {
		flat := flattenAllOf(child)
		if flat == nil {
			continue
		}
		for k, v := range flat.SlotConditions {
			merged.SlotConditions[k] = v
		}
		merged.Expressions = append(merged.Expressions, flat.Expressions...)
	}
	return merged
}

func writeConditions(sb *strings.Builder, opts *gen.Options, c *model.RuleConditions, isThen bool) {
	if c.IsEmpty() {
		return
	}
	if c.Not != nil {
		sb.WriteString(gen.Indent(opts.Indent, 1, "not {"))
		sb.WriteByte('\n')
		writeSlotConditions(sb, opts, c.Not.SlotConditions, isThen, 2)
		sb.WriteString(gen.Indent(opts.Indent, 1, "}"))
		sb.WriteString(";\n")
		return
	}
	writeSlotConditions(sb, opts, c.SlotConditions, isThen, 1)
	for _, expr := range c.Expressions {
		sb.WriteString(gen.Indent(opts.Indent, 1, expr))
		sb.WriteString(";\n")
	}
}

func writeSlotConditions(sb *strings.Builder, opts *gen.Options, conds map[string]model.SlotCondition, isThen bool, depth int) {
	slots := make([]string, 0, len(conds))
	for slot := range conds {
		slots = append(slots, slot)
	}
	sort.Strings(slots) // map iteration order is random; output must be byte-identical across runs (§8).
	for _, slot := range slots {
		cond := conds[slot]
		varName := "$x_" + slot
		line := fmt.Sprintf("$x has %s: %s;", ident(slot), varName)
		sb.WriteString(gen.Indent(opts.Indent, depth, line))
		sb.WriteByte('\n')
		if cond.Range != "" {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s isa %s;", varName, ident(cond.Range))))
			sb.WriteByte('\n')
		}
		if cond.EqualsString != nil {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s == %q;", varName, *cond.EqualsString)))
			sb.WriteByte('\n')
		}
		if cond.EqualsNumber != nil {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s == %v;", varName, *cond.EqualsNumber)))
			sb.WriteByte('\n')
		}
		if cond.Minimum != nil {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s >= %v;", varName, *cond.Minimum)))
			sb.WriteByte('\n')
		}
		if cond.Maximum != nil {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s <= %v;", varName, *cond.Maximum)))
			sb.WriteByte('\n')
		}
		if cond.Pattern != "" {
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s like %q;", varName, cond.Pattern)))
			sb.WriteByte('\n')
		}
		if cond.Op != "" {
			op, ok := opMap[cond.Op]
			if !ok {
				op = cond.Op
			}
			sb.WriteString(gen.Indent(opts.Indent, depth, fmt.Sprintf("%s %s %s;", varName, op, cond.Value)))
			sb.WriteByte('\n')
		}
	}
}

// emitUniqueKeyRules implements §4.3 "Multi-field unique keys": for every
// unique-key definition with more than one slot, emit a rule matching two
// distinct instances sharing all key-slot values and asserting a
// validation error. Single-slot keys are carried via the `@unique` inline
// annotation emitted in emitEntity/emitRelation instead.
func emitUniqueKeyRules(sb *strings.Builder, className string, cls *model.ClassDefinition, opts *gen.Options) {
	if cls.UniqueKeys == nil {
		return
	}
	for _, keyName := range cls.UniqueKeys.Keys() {
		slots, _ := cls.UniqueKeys.Get(keyName)
		if len(slots) <= 1 {
			continue
		}
		fmt.Fprintf(sb, "rule %s-%s-unique:\nwhen {\n", ident(className), ident(keyName))
		sb.WriteString(gen.Indent(opts.Indent, 1, fmt.Sprintf("$a isa %s; $b isa %s;", ident(className), ident(className))))
		sb.WriteByte('\n')
		for _, slot := range slots {
			line := fmt.Sprintf("$a has %s $v_%s; $b has %s $v_%s;", ident(slot), ident(slot), ident(slot), ident(slot))
			sb.WriteString(gen.Indent(opts.Indent, 1, line))
			sb.WriteByte('\n')
		}
		sb.WriteString(gen.Indent(opts.Indent, 1, "not { $a is $b; };"))
		sb.WriteString("\n} then {\n")
		sb.WriteString(gen.Indent(opts.Indent, 1, fmt.Sprintf("# validation error: duplicate unique key %q on %s", keyName, ident(className))))
		sb.WriteString("\n};\n\n")
	}
}
