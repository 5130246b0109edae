package validate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// Instance is the generic decoded shape of one data record: field name to
// value, where value is one of nil, bool, float64, string, []any or
// map[string]any (the shapes produced by JSON/YAML decoding).
type Instance map[string]any

// CancelledError wraps a partial Report produced when a Validate call is
// cancelled mid-run (§5 "Cancellation"). It unwraps to
// schemaforge.ErrCancelled so callers can use errors.Is.
type CancelledError struct {
	Report *Report
}

func (e *CancelledError) Error() string { return "schemaforge: validation cancelled" }

// Is allows errors.Is(err, schemaforge.ErrCancelled) to succeed.
func (e *CancelledError) Is(target error) bool { return target == schemaforge.ErrCancelled }

// engine bundles the state shared across one Validate call's recursive
// descent: the resolved schema, options, and an optional per-run effective-
// slot cache that is never held across a suspension point (§9 "the design
// keeps caches local to a single invocation").
type engine struct {
	r     *resolve.Resolved
	opts  *Options
	ctx   context.Context
	cache map[string][]*resolve.EffectiveSlot
}

// Validate runs the Validation Engine (§4.4) against instance as an
// occurrence of class className within r. A nil opts applies defaults.
func Validate(ctx context.Context, r *resolve.Resolved, className string, instance Instance, opts *Options) (*Report, error) {
	if r == nil {
		return nil, schemaforge.NewSchemaValidationError("schema", "resolved schema is nil")
	}
	var err error
	if opts == nil {
		opts, err = NewOptions()
		if err != nil {
			return nil, err
		}
	}
	e := &engine{r: r, opts: opts, ctx: ctx, cache: make(map[string][]*resolve.EffectiveSlot)}
	report, err := e.validateClass(className, instance, className, 0)
	if err != nil {
		if schemaforge.IsCancelled(err) {
			if report == nil {
				report = &Report{}
			}
			report.finalize(opts.FailOnWarning)
			return report, &CancelledError{Report: report}
		}
		return nil, err
	}
	report.finalize(opts.FailOnWarning)
	return report, nil
}

func (e *engine) cancelled() bool {
	if e.ctx == nil {
		return false
	}
	select {
	case <-e.ctx.Done():
		return true
	default:
		return false
	}
}

func (e *engine) effectiveSlots(className string) ([]*resolve.EffectiveSlot, error) {
	if e.opts.UseCache {
		if cached, ok := e.cache[className]; ok {
			return cached, nil
		}
	}
	rc, ok := e.r.Class(className)
	if !ok {
		return nil, schemaforge.NewNotFoundError("class", className)
	}
	if e.opts.UseCache {
		e.cache[className] = rc.EffectiveSlots
	}
	return rc.EffectiveSlots, nil
}

// validateClass validates instance as an occurrence of className and
// returns the issues found in its own subtree (including any recursively
// validated class-valued fields).
func (e *engine) validateClass(className string, instance Instance, path string, depth int) (*Report, error) {
	if e.cancelled() {
		return nil, schemaforge.ErrCancelled
	}
	report := &Report{}
	if depth > e.opts.MaxDepth {
		report.Issues = append(report.Issues, Issue{Path: path, Kind: MaxDepthExceeded, Message: "maximum recursion depth exceeded", Severity: SeverityError})
		return report, nil
	}

	slots, err := e.effectiveSlots(className)
	if err != nil {
		return nil, err
	}

	validateOne := func(slot *resolve.EffectiveSlot) ([]Issue, error) {
		var issues []Issue
		fieldPath := path + "." + slot.Name
		value, present := instance[slot.Name]
		if err := e.validateField(fieldPath, slot, value, present, depth, &issues); err != nil {
			return nil, err
		}
		if fn, ok := e.opts.CustomValidators[fieldPath]; ok && present {
			if msg, failed := fn(fieldPath, value); failed {
				issues = append(issues, Issue{Path: fieldPath, Kind: RuleViolation, Message: msg, Severity: SeverityError})
			}
		}
		return issues, nil
	}

	if e.opts.Parallel {
		results := make([][]Issue, len(slots))
		g, gctx := errgroup.WithContext(e.ctxOrBackground())
		_ = gctx
		for i, slot := range slots {
			i, slot := i, slot
			g.Go(func() error {
				if e.cancelled() {
					return schemaforge.ErrCancelled
				}
				iss, err := validateOne(slot)
				if err != nil {
					return err
				}
				results[i] = iss
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, iss := range results {
			report.Issues = append(report.Issues, iss...)
		}
	} else {
		for _, slot := range slots {
			if e.cancelled() {
				return nil, schemaforge.ErrCancelled
			}
			iss, err := validateOne(slot)
			if err != nil {
				return nil, err
			}
			report.Issues = append(report.Issues, iss...)
			if e.opts.FailFast && len(report.Issues) > 0 {
				break
			}
		}
	}
	report.Stats.FieldsChecked += len(slots)

	if !e.opts.AllowAdditionalProperties {
		known := make(map[string]bool, len(slots))
		for _, slot := range slots {
			known[slot.Name] = true
		}
		for key := range instance {
			if !known[key] {
				report.Issues = append(report.Issues, Issue{
					Path: path + "." + key, Kind: UnknownField,
					Message: fmt.Sprintf("field %q is not declared on class %q", key, className), Severity: SeverityError,
				})
			}
		}
	}

	rc, _ := e.r.Class(className)
	if rc != nil {
		report.Issues = append(report.Issues, e.evaluateRules(path, rc.ClassDefinition, instance)...)
		report.Stats.RulesChecked += len(rc.ClassDefinition.Rules)
	}
	report.Stats.MaxDepthSeen = depth

	return report, nil
}

func (e *engine) ctxOrBackground() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// validateField applies the scalar/multivalued rules of §4.4 step 2-3 for
// one slot against the raw instance value.
func (e *engine) validateField(path string, slot *resolve.EffectiveSlot, value any, present bool, depth int, issues *[]Issue) error {
	if slot.Multivalued {
		if !present || value == nil {
			if slot.Required {
				*issues = append(*issues, Issue{Path: path, Kind: RequiredFieldMissing, Message: "required multivalued field is absent", Severity: SeverityError})
			}
			return nil
		}
		list, ok := value.([]any)
		if !ok {
			*issues = append(*issues, Issue{Path: path, Kind: CardinalityViolation, Message: "expected a list for multivalued field", Severity: SeverityError})
			return nil
		}
		if slot.Required && len(list) == 0 {
			// §8 boundary: "a multivalued required slot rejects an empty list".
			*issues = append(*issues, Issue{Path: path, Kind: CardinalityViolation, Message: "required multivalued field must not be empty", Severity: SeverityError})
			return nil
		}
		for i, elem := range list {
			if err := e.validateScalar(fmt.Sprintf("%s[%d]", path, i), slot, elem, true, depth, issues); err != nil {
				return err
			}
			if e.opts.FailFast && len(*issues) > 0 {
				return nil
			}
		}
		return nil
	}
	return e.validateScalar(path, slot, value, present, depth, issues)
}

func (e *engine) validateScalar(path string, slot *resolve.EffectiveSlot, value any, present bool, depth int, issues *[]Issue) error {
	start := len(*issues)
	fail := func(iss Issue) bool {
		*issues = append(*issues, iss)
		return e.opts.FailFast
	}

	// a. required/absent.
	if !present || value == nil {
		if slot.Required {
			fail(Issue{Path: path, Kind: RequiredFieldMissing, Message: "required field is absent", Severity: SeverityError})
		}
		return nil
	}

	schema := e.r.Schema
	kind, primitive, typePattern := classifyRange(schema, slot.Range)

	// b. type coercion.
	switch kind {
	case rangeClass:
		switch obj := value.(type) {
		case map[string]any:
			sub, err := e.validateClass(slot.Range, Instance(obj), path, depth+1)
			if err != nil {
				return err
			}
			*issues = append(*issues, sub.Issues...)
		case string:
			// A bare string against a non-inlined class range is a
			// reference by identifier; an inlined slot demands the nested
			// object itself.
			if slot.Inlined {
				fail(Issue{Path: path, Kind: TypeMismatch, Message: fmt.Sprintf("expected an inlined object for range %q", slot.Range), Severity: SeverityError})
				return nil
			}
			if e.opts.ReferenceChecker != nil && !e.opts.ReferenceChecker(slot.Range, obj) {
				fail(Issue{Path: path, Kind: ReferentialIntegrityViolation, Message: fmt.Sprintf("reference %q does not resolve to an instance of %q", obj, slot.Range), Severity: SeverityError})
			}
		default:
			fail(Issue{Path: path, Kind: TypeMismatch, Message: fmt.Sprintf("expected an object or reference for range %q", slot.Range), Severity: SeverityError})
		}
		return nil
	case rangeEnum:
		// type checked as part of permissible-value membership below (step e).
	default:
		if !checkPrimitiveType(primitive, value) {
			if fail(Issue{Path: path, Kind: TypeMismatch, Message: fmt.Sprintf("value does not match range %q", slot.Range), Severity: SeverityError}) {
				return nil
			}
		}
	}
	if e.opts.FailFast && len(*issues) > start {
		return nil
	}

	// c. pattern.
	pattern := slot.Pattern
	if pattern == "" {
		pattern = typePattern
	}
	if pattern != "" {
		if s, ok := value.(string); ok {
			re, err := regexp.Compile(pattern)
			if err == nil && !re.MatchString(s) {
				if fail(Issue{Path: path, Kind: PatternMismatch, Message: fmt.Sprintf("value %q does not match pattern %q", s, pattern), Severity: SeverityError}) {
					return nil
				}
			}
		}
	}

	// d. numeric range.
	if slot.MinimumValue != nil || slot.MaximumValue != nil {
		if n, ok := numericValue(value); ok {
			if slot.MinimumValue != nil && n < *slot.MinimumValue {
				if fail(Issue{Path: path, Kind: RangeViolation, Message: fmt.Sprintf("value %v is below minimum %v", n, *slot.MinimumValue), Severity: SeverityError}) {
					return nil
				}
			}
			if slot.MaximumValue != nil && n > *slot.MaximumValue {
				if fail(Issue{Path: path, Kind: RangeViolation, Message: fmt.Sprintf("value %v is above maximum %v", n, *slot.MaximumValue), Severity: SeverityError}) {
					return nil
				}
			}
		}
	}

	// e. permissible values / enum membership.
	if e.opts.CheckPermissibles {
		values := slot.PermissibleValues
		if kind == rangeEnum {
			if enumDef, ok := schema.Enums.Get(slot.Range); ok {
				values = enumDef.PermissibleValues
			}
		}
		if len(values) > 0 {
			s, ok := value.(string)
			match := false
			if ok {
				for _, pv := range values {
					if pv.Text == s {
						match = true
						break
					}
				}
			}
			if !match {
				fail(Issue{Path: path, Kind: EnumViolation, Message: fmt.Sprintf("value %v is not a permissible value", value), Severity: SeverityError})
			}
		}
	}
	return nil
}

type rangeKind int

const (
	rangePrimitive rangeKind = iota
	rangeClass
	rangeEnum
)

// classifyRange resolves slot.Range against the schema's types/classes/enums,
// following type-definition base_type chains (§4.4 step b, §3 TypeDefinition).
func classifyRange(schema *model.Schema, rng string) (rangeKind, model.Primitive, string) {
	if rng == "" {
		return rangePrimitive, model.PrimitiveString, ""
	}
	if model.IsPrimitive(rng) {
		return rangePrimitive, model.Primitive(rng), ""
	}
	if schema.Types.Has(rng) {
		p, pattern := resolve.ResolveTypeChain(schema, rng)
		return rangePrimitive, p, pattern
	}
	if _, ok := schema.Enums.Get(rng); ok {
		return rangeEnum, "", ""
	}
	if _, ok := schema.Classes.Get(rng); ok {
		return rangeClass, "", ""
	}
	// Unrecognized range: fall back to string, matching the graph-schema
	// generator's attribute-type fallback (§4.3).
	return rangePrimitive, model.PrimitiveString, ""
}

func checkPrimitiveType(p model.Primitive, value any) bool {
	switch p {
	case model.PrimitiveInteger:
		switch v := value.(type) {
		case float64:
			return v == math.Trunc(v)
		case int, int64:
			return true
		case string:
			_, err := strconv.ParseInt(v, 10, 64)
			return err == nil
		}
		return false
	case model.PrimitiveFloat, model.PrimitiveDouble, model.PrimitiveDecimal:
		switch v := value.(type) {
		case float64, int, int64:
			_ = v
			return true
		case string:
			_, err := strconv.ParseFloat(v, 64)
			return err == nil
		}
		return false
	case model.PrimitiveBoolean:
		_, ok := value.(bool)
		return ok
	case model.PrimitiveDate:
		return isParsableTime(value, "2006-01-02")
	case model.PrimitiveDatetime:
		return isParsableTime(value, time.RFC3339)
	case model.PrimitiveTime:
		return isParsableTime(value, "15:04:05")
	default: // string, uri, uriorcurie, ncname, curie
		_, ok := value.(string)
		return ok
	}
}

func isParsableTime(value any, layout string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(layout, s)
	return err == nil
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
