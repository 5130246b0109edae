package model

// Rule is a named pre/post-condition attached to a class (§3, §4.4).
type Rule struct {
	Title           string         `yaml:"title" json:"title"`
	Description     string         `yaml:"description,omitempty" json:"description,omitempty"`
	Preconditions   *RuleConditions `yaml:"preconditions,omitempty" json:"preconditions,omitempty"`
	Postconditions  *RuleConditions `yaml:"postconditions,omitempty" json:"postconditions,omitempty"`
	Elseconditions  *RuleConditions `yaml:"elseconditions,omitempty" json:"elseconditions,omitempty"`
}

// SlotCondition constrains a single slot's value within a RuleConditions
// mapping.
type SlotCondition struct {
	Range         string   `yaml:"range,omitempty" json:"range,omitempty"`
	EqualsString  *string  `yaml:"equals_string,omitempty" json:"equals_string,omitempty"`
	EqualsNumber  *float64 `yaml:"equals_number,omitempty" json:"equals_number,omitempty"`
	Minimum       *float64 `yaml:"minimum_value,omitempty" json:"minimum_value,omitempty"`
	Maximum       *float64 `yaml:"maximum_value,omitempty" json:"maximum_value,omitempty"`
	Pattern       string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Op/Value express a generic comparator (one of eq, ne, ge, le, gt,
	// lt) against a literal, used when the condition is not one of the
	// named shapes above (§4.3 "Value comparators").
	Op    string `yaml:"op,omitempty" json:"op,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

// RuleConditions is one of three shapes (§3):
//
//   - a mapping from slot name to SlotCondition (SlotConditions non-nil)
//   - a list of expression strings (Expressions non-nil)
//   - a composite of AllOf/AnyOf child RuleConditions
//
// Exactly one of the three shapes should be populated on any given value;
// the evaluator (package validate) treats an empty RuleConditions as
// "always applies" (spec.md §4.4: "absence of preconditions means always
// applies").
type RuleConditions struct {
	SlotConditions map[string]SlotCondition `yaml:"slot_conditions,omitempty" json:"slot_conditions,omitempty"`
	Expressions    []string                  `yaml:"expressions,omitempty" json:"expressions,omitempty"`
	AllOf          []*RuleConditions         `yaml:"all_of,omitempty" json:"all_of,omitempty"`
	AnyOf          []*RuleConditions         `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	Not            *RuleConditions           `yaml:"not,omitempty" json:"not,omitempty"`
}

// IsEmpty reports whether c has no populated shape, i.e. it "always
// applies" per §4.4.
func (c *RuleConditions) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.SlotConditions) == 0 && len(c.Expressions) == 0 &&
		len(c.AllOf) == 0 && len(c.AnyOf) == 0 && c.Not == nil
}
