package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/schemaforge/schemaforge/model"
)

// evaluateRules runs every Rule attached to cls against instance, emitting
// a RuleViolation issue for each postcondition/elsecondition clause that
// fails to hold (§4.4 step 4).
func (e *engine) evaluateRules(path string, cls *model.ClassDefinition, instance Instance) []Issue {
	var issues []Issue
	for _, rule := range cls.Rules {
		preHolds := evalConditions(e.r.Schema, rule.Preconditions, instance)
		if preHolds {
			if rule.Postconditions != nil && !evalConditions(e.r.Schema, rule.Postconditions, instance) {
				issues = append(issues, Issue{
					Path: path, Kind: RuleViolation, Severity: SeverityError, RuleTitle: rule.Title,
					Message: fmt.Sprintf("postcondition of rule %q did not hold", rule.Title),
				})
			}
		} else if rule.Elseconditions != nil {
			if !evalConditions(e.r.Schema, rule.Elseconditions, instance) {
				issues = append(issues, Issue{
					Path: path, Kind: RuleViolation, Severity: SeverityError, RuleTitle: rule.Title,
					Message: fmt.Sprintf("elsecondition of rule %q did not hold", rule.Title),
				})
			}
		}
	}
	return issues
}

// evalConditions evaluates a RuleConditions bundle against instance.
// Absence of conditions means "always applies" (§4.4). Composite semantics:
// all_of is logical AND, any_of is logical OR, not negates its child.
func evalConditions(schema *model.Schema, c *model.RuleConditions, instance Instance) bool {
	if c.IsEmpty() {
		return true
	}
	if c.Not != nil {
		return !evalConditions(schema, c.Not, instance)
	}
	if len(c.AllOf) > 0 {
		for _, child := range c.AllOf {
			if !evalConditions(schema, child, instance) {
				return false
			}
		}
		return true
	}
	if len(c.AnyOf) > 0 {
		for _, child := range c.AnyOf {
			if evalConditions(schema, child, instance) {
				return true
			}
		}
		return false
	}
	if len(c.SlotConditions) > 0 {
		for slotName, cond := range c.SlotConditions {
			if !evalSlotCondition(schema, cond, instance[slotName]) {
				return false
			}
		}
		return true
	}
	if len(c.Expressions) > 0 {
		for _, expr := range c.Expressions {
			if !evalExpression(expr, instance) {
				return false
			}
		}
		return true
	}
	return true
}

// evalSlotCondition checks one slot-name -> condition mapping entry of a
// RuleConditions (§3 "a mapping from slot-name to a slot-condition
// (range/equals-string/equals-number/min/max/pattern)").
func evalSlotCondition(schema *model.Schema, cond model.SlotCondition, value any) bool {
	if value == nil {
		return false
	}
	if cond.Range != "" {
		kind, primitive, _ := classifyRange(schema, cond.Range)
		if kind == rangePrimitive && !checkPrimitiveType(primitive, value) {
			return false
		}
	}
	if cond.EqualsString != nil {
		s, ok := value.(string)
		if !ok || s != *cond.EqualsString {
			return false
		}
	}
	if cond.EqualsNumber != nil {
		n, ok := numericValue(value)
		if !ok || n != *cond.EqualsNumber {
			return false
		}
	}
	if cond.Minimum != nil {
		n, ok := numericValue(value)
		if !ok || n < *cond.Minimum {
			return false
		}
	}
	if cond.Maximum != nil {
		n, ok := numericValue(value)
		if !ok || n > *cond.Maximum {
			return false
		}
	}
	if cond.Pattern != "" {
		s, ok := value.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(cond.Pattern)
		if err != nil || !re.MatchString(s) {
			return false
		}
	}
	if cond.Op != "" {
		if !compareOp(value, cond.Op, cond.Value) {
			return false
		}
	}
	return true
}

// compareOp implements §4.3's "operator map == | != | >= | <= | > | <"
// for value comparators in rule slot conditions and expressions. The
// graph-schema generator keeps its own operator map and does not call it.
func compareOp(value any, op, literal string) bool {
	if n, ok := numericValue(value); ok {
		if lit, err := strconv.ParseFloat(literal, 64); err == nil {
			switch op {
			case "==":
				return n == lit
			case "!=":
				return n != lit
			case ">=":
				return n >= lit
			case "<=":
				return n <= lit
			case ">":
				return n > lit
			case "<":
				return n < lit
			}
		}
	}
	s := fmt.Sprintf("%v", value)
	switch op {
	case "==":
		return s == literal
	case "!=":
		return s != literal
	default:
		return false
	}
}

// evalExpression evaluates one of the free-form expression strings allowed
// as an alternative RuleConditions shape (§3 "a list of expression
// strings"). Only the minimal "<field> <op> <literal>" shape is supported;
// anything else is treated as not holding rather than causing a parse
// error, since the grammar for richer expressions is left to the schema
// author's own tooling and is not specified.
func evalExpression(expr string, instance Instance) bool {
	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return false
	}
	value, ok := instance[fields[0]]
	if !ok {
		return false
	}
	return compareOp(value, fields[1], fields[2])
}
