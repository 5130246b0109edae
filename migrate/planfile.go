package migrate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge"
)

// ParseTransform builds a Transform from its typed map shape (§4.5 "a
// custom transform of typed shape { type: "merge_fields"|"split_field",
// … }"). The same shapes round-trip through TransformSpec, which is how
// plan files carry their data-migration steps.
func ParseTransform(spec map[string]any) (Transform, error) {
	kind, _ := spec["type"].(string)
	switch kind {
	case "rename_field":
		return RenameField{From: stringKey(spec, "from"), To: stringKey(spec, "to")}, nil
	case "coerce_type":
		return CoerceType{Field: stringKey(spec, "field"), To: stringKey(spec, "to")}, nil
	case "value_transform":
		return ValueTransform{Field: stringKey(spec, "field"), Op: ValueOp(stringKey(spec, "op"))}, nil
	case "split_field":
		return SplitField{
			Field:     stringKey(spec, "field"),
			Delimiter: stringKey(spec, "delimiter"),
			Into:      stringList(spec, "into"),
		}, nil
	case "merge_fields":
		return MergeField{
			Fields: stringList(spec, "fields"),
			Joiner: stringKey(spec, "joiner"),
			Into:   stringKey(spec, "into"),
		}, nil
	case "default_value":
		return DefaultValue{Field: stringKey(spec, "field"), Value: spec["value"]}, nil
	case "":
		return nil, schemaforge.NewConfigError("type", nil, "transform spec has no type")
	default:
		return nil, schemaforge.NewConfigError("type", kind, "unrecognized transform type")
	}
}

// TransformSpec renders t back into its typed map shape, the inverse of
// ParseTransform.
func TransformSpec(t Transform) map[string]any {
	switch tr := t.(type) {
	case RenameField:
		return map[string]any{"type": "rename_field", "from": tr.From, "to": tr.To}
	case CoerceType:
		return map[string]any{"type": "coerce_type", "field": tr.Field, "to": tr.To}
	case ValueTransform:
		return map[string]any{"type": "value_transform", "field": tr.Field, "op": string(tr.Op)}
	case SplitField:
		return map[string]any{"type": "split_field", "field": tr.Field, "delimiter": tr.Delimiter, "into": anyList(tr.Into)}
	case MergeField:
		return map[string]any{"type": "merge_fields", "fields": anyList(tr.Fields), "joiner": tr.Joiner, "into": tr.Into}
	case DefaultValue:
		return map[string]any{"type": "default_value", "field": tr.Field, "value": tr.Value}
	default:
		return nil
	}
}

func stringKey(spec map[string]any, key string) string {
	s, _ := spec[key].(string)
	return s
}

func stringList(spec map[string]any, key string) []string {
	raw, _ := spec[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func anyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// planFile is the on-disk shape of a Plan (§6 "plan(from, to) → PlanFile").
type planFile struct {
	RiskLevel RiskLevel      `yaml:"risk_level"`
	Steps     []planFileStep `yaml:"steps"`
}

type planFileStep struct {
	ID        string           `yaml:"id"`
	Kind      StepKind         `yaml:"kind"`
	DependsOn []string         `yaml:"depends_on,omitempty"`
	Rollback  RollbackStrategy `yaml:"rollback,omitempty"`
	Change    *planFileChange  `yaml:"change,omitempty"`
	Transform map[string]any   `yaml:"transform,omitempty"`
}

type planFileChange struct {
	Kind         ChangeKind   `yaml:"kind"`
	Element      string       `yaml:"element"`
	RenameTo     string       `yaml:"rename_to,omitempty"`
	Detail       string       `yaml:"detail,omitempty"`
	Strategy     StrategyKind `yaml:"strategy"`
	Transform    string       `yaml:"transform_name,omitempty"`
	Instructions string       `yaml:"instructions,omitempty"`
	Warning      string       `yaml:"warning,omitempty"`
	Default      any          `yaml:"default,omitempty"`
}

// MarshalPlan renders plan as a YAML plan file.
func MarshalPlan(plan *Plan) ([]byte, error) {
	pf := planFile{RiskLevel: plan.RiskLevel}
	for _, step := range plan.Steps {
		ps := planFileStep{
			ID:        step.ID,
			Kind:      step.Kind,
			DependsOn: step.DependsOn,
			Rollback:  step.RollbackStrategy,
		}
		if step.Change != nil {
			ps.Change = &planFileChange{
				Kind:         step.Change.Kind,
				Element:      step.Change.Element,
				RenameTo:     step.Change.RenameTo,
				Detail:       step.Change.Detail,
				Strategy:     step.Change.Strategy.Kind,
				Transform:    step.Change.Strategy.TransformName,
				Instructions: step.Change.Strategy.Instructions,
				Warning:      step.Change.Strategy.Warning,
				Default:      step.Change.Strategy.Default,
			}
		}
		if step.Transform != nil {
			ps.Transform = TransformSpec(step.Transform)
		}
		pf.Steps = append(pf.Steps, ps)
	}
	out, err := yaml.Marshal(pf)
	if err != nil {
		return nil, schemaforge.NewGeneratorError("plan-file", "marshal failed", err)
	}
	return out, nil
}

// UnmarshalPlan parses a YAML plan file back into a Plan.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var pf planFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, schemaforge.NewParseError("plan-file", err.Error())
	}
	plan := &Plan{RiskLevel: pf.RiskLevel}
	for _, ps := range pf.Steps {
		step := &MigrationStep{
			ID:               ps.ID,
			Kind:             ps.Kind,
			DependsOn:        ps.DependsOn,
			RollbackStrategy: ps.Rollback,
		}
		if ps.Change != nil {
			step.Change = &BreakingChange{
				Kind:     ps.Change.Kind,
				Element:  ps.Change.Element,
				RenameTo: ps.Change.RenameTo,
				Detail:   ps.Change.Detail,
				Strategy: MigrationStrategy{
					Kind:          ps.Change.Strategy,
					TransformName: ps.Change.Transform,
					Instructions:  ps.Change.Instructions,
					Warning:       ps.Change.Warning,
					Default:       ps.Change.Default,
				},
			}
		}
		if len(ps.Transform) > 0 {
			t, err := ParseTransform(ps.Transform)
			if err != nil {
				return nil, fmt.Errorf("migrate: step %q: %w", ps.ID, err)
			}
			step.Transform = t
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

// SavePlan writes plan to path as a YAML plan file.
func SavePlan(plan *Plan, path string) error {
	data, err := MarshalPlan(plan)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return schemaforge.NewIoError(path, err)
	}
	return nil
}

// LoadPlan reads a plan file previously written by SavePlan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaforge.NewIoError(path, err)
	}
	return UnmarshalPlan(data)
}
