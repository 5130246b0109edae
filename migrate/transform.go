package migrate

import (
	"fmt"
	"strconv"
	"strings"
)

// Transform is one data-file mutation applied by a StepDataMigration step
// (§4.5 "DataMigration"). Apply receives one decoded record and returns the
// transformed record.
type Transform interface {
	Name() string
	Apply(record map[string]any) (map[string]any, error)
}

// RenameField renames From to To, recursing into nested objects/lists so a
// field named From anywhere in the record is renamed (§4.5 "field rename
// (recursive object rewrite)").
type RenameField struct {
	From, To string
}

func (t RenameField) Name() string { return "rename_field" }

func (t RenameField) Apply(record map[string]any) (map[string]any, error) {
	out, _ := renameRecursive(record, t.From, t.To).(map[string]any)
	return out, nil
}

func renameRecursive(value any, from, to string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key := k
			if k == from {
				key = to
			}
			out[key] = renameRecursive(val, from, to)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = renameRecursive(elem, from, to)
		}
		return out
	default:
		return value
	}
}

// CoerceType converts record[Field] between string, number, boolean and
// single-element array forms (§4.5 "type coercion (string<->number<->
// boolean<->array with documented coercions)").
type CoerceType struct {
	Field string
	To    string // one of "string", "integer", "float", "double", "decimal", "boolean" or "array" (wraps a non-list value in a one-element list); any other target fails
}

func (t CoerceType) Name() string { return "coerce_type" }

func (t CoerceType) Apply(record map[string]any) (map[string]any, error) {
	value, ok := record[t.Field]
	if !ok || value == nil {
		return record, nil
	}
	coerced, err := coerceValue(value, t.To)
	if err != nil {
		return nil, fmt.Errorf("migrate: coerce field %q: %w", t.Field, err)
	}
	out := cloneRecord(record)
	out[t.Field] = coerced
	return out, nil
}

func coerceValue(value any, to string) (any, error) {
	switch to {
	case "integer":
		switch v := value.(type) {
		case float64:
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return n, err
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case "float", "double", "decimal":
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case "boolean":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(v))
		case float64:
			return v != 0, nil
		}
	case "string":
		return fmt.Sprintf("%v", value), nil
	case "array":
		if _, ok := value.([]any); ok {
			return value, nil
		}
		return []any{value}, nil
	}
	return nil, fmt.Errorf("no coercion from %T to %q", value, to)
}

// ValueOp is a string-mutation applied in place by ValueTransform.
type ValueOp string

const (
	OpUppercase ValueOp = "uppercase"
	OpLowercase ValueOp = "lowercase"
	OpTrim      ValueOp = "trim"
)

// ValueTransform applies an uppercase/lowercase/trim operation to a named
// field (§4.5 "value transform (uppercase/lowercase/trim on named
// fields)").
type ValueTransform struct {
	Field string
	Op    ValueOp
}

func (t ValueTransform) Name() string { return "value_transform" }

func (t ValueTransform) Apply(record map[string]any) (map[string]any, error) {
	s, ok := record[t.Field].(string)
	if !ok {
		return record, nil
	}
	var transformed string
	switch t.Op {
	case OpUppercase:
		transformed = strings.ToUpper(s)
	case OpLowercase:
		transformed = strings.ToLower(s)
	case OpTrim:
		transformed = strings.TrimSpace(s)
	default:
		return nil, fmt.Errorf("migrate: unknown value transform op %q", t.Op)
	}
	out := cloneRecord(record)
	out[t.Field] = transformed
	return out, nil
}

// SplitField splits record[Field] by Delimiter into len(Into) named
// fields (§4.5 "field split by delimiter into N named fields").
type SplitField struct {
	Field     string
	Delimiter string
	Into      []string
}

func (t SplitField) Name() string { return "split_field" }

func (t SplitField) Apply(record map[string]any) (map[string]any, error) {
	s, ok := record[t.Field].(string)
	if !ok {
		return record, nil
	}
	parts := strings.Split(s, t.Delimiter)
	out := cloneRecord(record)
	for i, name := range t.Into {
		if i < len(parts) {
			out[name] = parts[i]
		} else {
			out[name] = ""
		}
	}
	return out, nil
}

// MergeField merges N fields with a joiner into one named field (§4.5
// "field merge from N fields with joiner").
type MergeField struct {
	Fields []string
	Joiner string
	Into   string
}

func (t MergeField) Name() string { return "merge_fields" }

func (t MergeField) Apply(record map[string]any) (map[string]any, error) {
	parts := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		parts = append(parts, fmt.Sprintf("%v", record[f]))
	}
	out := cloneRecord(record)
	out[t.Into] = strings.Join(parts, t.Joiner)
	return out, nil
}

// DefaultValue injects Value for Field when the field is absent (§4.5
// "default-value injection for absent fields").
type DefaultValue struct {
	Field string
	Value any
}

func (t DefaultValue) Name() string { return "default_value" }

func (t DefaultValue) Apply(record map[string]any) (map[string]any, error) {
	if _, ok := record[t.Field]; ok {
		return record, nil
	}
	out := cloneRecord(record)
	out[t.Field] = t.Value
	return out, nil
}

func cloneRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
