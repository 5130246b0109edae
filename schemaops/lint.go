package schemaops

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// LintSeverity distinguishes hard errors from advisory warnings, mirroring
// dialect/sql/schema/validate.go's ValidationResult{Errors,Warnings} split.
type LintSeverity string

const (
	LintError   LintSeverity = "error"
	LintWarning LintSeverity = "warning"
)

// LintIssue is one finding reported by Lint.
type LintIssue struct {
	Element  string
	Severity LintSeverity
	Message  string
}

func (i LintIssue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Element, i.Message)
}

// LintResult collects Lint's findings.
type LintResult struct {
	Errors   []LintIssue
	Warnings []LintIssue
}

// HasErrors reports whether any error-severity issue was found.
func (r *LintResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether any warning-severity issue was found.
func (r *LintResult) HasWarnings() bool { return len(r.Warnings) > 0 }

func (r *LintResult) report(severity LintSeverity, element, format string, args ...any) {
	issue := LintIssue{Element: element, Severity: severity, Message: fmt.Sprintf(format, args...)}
	if severity == LintError {
		r.Errors = append(r.Errors, issue)
	} else {
		r.Warnings = append(r.Warnings, issue)
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Lint checks a schema for structural issues: empty descriptions, malformed
// identifiers, class slot references that resolve to no slot definition,
// identifier-slot misuse and dangling unique-key references, plus the
// dangling is_a/mixin and cycle checks the Resolver also makes. Slots that
// no class references are not reported.
func Lint(schema *model.Schema) *LintResult {
	r := &LintResult{}

	for _, name := range schema.Classes.Keys() {
		cls, _ := schema.Classes.Get(name)
		if !identifierPattern.MatchString(name) {
			r.report(LintError, name, "class name is not a valid identifier")
		}
		if cls.Description == "" {
			r.report(LintWarning, name, "class has no description")
		}
		if cls.IsA != "" && !schema.Classes.Has(cls.IsA) {
			r.report(LintError, name, "is_a references unknown class %q", cls.IsA)
		}
		for _, mixin := range cls.Mixins {
			if !schema.Classes.Has(mixin) {
				r.report(LintError, name, "mixin references unknown class %q", mixin)
			}
		}
		for _, slotName := range cls.Slots {
			if !schema.Slots.Has(slotName) && !(cls.Attributes != nil && cls.Attributes.Has(slotName)) {
				r.report(LintError, name, "slot %q is not defined in schema.slots or attributes", slotName)
			}
		}
		if cls.UniqueKeys != nil {
			for _, keyName := range cls.UniqueKeys.Keys() {
				members, _ := cls.UniqueKeys.Get(keyName)
				for _, m := range members {
					if !schema.Slots.Has(m) && !(cls.Attributes != nil && cls.Attributes.Has(m)) {
						r.report(LintError, name, "unique_key %q references unknown slot %q", keyName, m)
					}
				}
			}
		}
	}

	lintIdentifierSlots(schema, r)

	for _, name := range schema.Slots.Keys() {
		slot, _ := schema.Slots.Get(name)
		if !identifierPattern.MatchString(name) {
			r.report(LintError, name, "slot name is not a valid identifier")
		}
		if slot.Identifier && !slot.Required {
			r.report(LintError, name, "identifier slot must be required (§3 invariant)")
		}
		if slot.MinimumValue != nil && slot.MaximumValue != nil && *slot.MinimumValue > *slot.MaximumValue {
			r.report(LintError, name, "minimum_value %v exceeds maximum_value %v", *slot.MinimumValue, *slot.MaximumValue)
		}
		if slot.Pattern != "" {
			if _, err := regexp.Compile(slot.Pattern); err != nil {
				r.report(LintError, name, "pattern does not compile: %v", err)
			}
		}
		if slot.Range != "" && !model.IsPrimitive(slot.Range) &&
			!schema.Classes.Has(slot.Range) && !schema.Enums.Has(slot.Range) && !schema.Types.Has(slot.Range) {
			r.report(LintError, name, "range %q does not resolve to a primitive, class, enum or type", slot.Range)
		}
	}

	for _, name := range schema.Enums.Keys() {
		enumDef, _ := schema.Enums.Get(name)
		seen := make(map[string]bool, len(enumDef.PermissibleValues))
		for _, pv := range enumDef.PermissibleValues {
			if pv.Text == "" {
				r.report(LintError, name, "permissible value has empty text")
				continue
			}
			if seen[pv.Text] {
				r.report(LintError, name, "duplicate permissible value %q", pv.Text)
			}
			seen[pv.Text] = true
		}
	}

	checkCycles(schema, r)

	return r
}

// lintIdentifierSlots checks the §3 invariant "at most one [identifier
// slot] per class hierarchy" by walking each class's ancestor chain (via
// resolve.Ancestors) and counting identifier-flagged effective slots.
func lintIdentifierSlots(schema *model.Schema, r *LintResult) map[string]int {
	counts := make(map[string]int)
	for _, name := range schema.Classes.Keys() {
		cls, _ := schema.Classes.Get(name)
		n := 0
		for _, slotName := range cls.Slots {
			if slot, ok := schema.Slots.Get(slotName); ok && slot.Identifier {
				n++
			}
		}
		ancestors, err := resolve.Ancestors(schema, name)
		if err == nil {
			for _, anc := range ancestors {
				ancCls, ok := schema.Classes.Get(anc)
				if !ok {
					continue
				}
				for _, slotName := range ancCls.Slots {
					if slot, ok := schema.Slots.Get(slotName); ok && slot.Identifier {
						n++
					}
				}
			}
		}
		counts[name] = n
		if n > 1 {
			r.report(LintError, name, "class hierarchy declares %d identifier slots, at most one is allowed", n)
		}
	}
	return counts
}

func checkCycles(schema *model.Schema, r *LintResult) {
	for _, name := range schema.Classes.Keys() {
		if _, err := resolve.Ancestors(schema, name); err != nil {
			r.report(LintError, name, "%v", err)
		}
	}
	for _, name := range schema.Types.Keys() {
		t, _ := schema.Types.Get(name)
		if strings.TrimSpace(string(t.BaseType)) == "" {
			r.report(LintWarning, name, "type has no base_type")
		}
	}
}
