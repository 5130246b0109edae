// Package validate implements the Validation Engine (spec.md §4.4): given a
// resolved schema, a target class name and an instance value, it produces a
// ValidationReport describing every constraint and rule violation found.
//
// The engine is the sole component that collects errors into a report
// rather than short-circuiting (§7 "Propagation policy"), unless the
// caller opts into fail-fast mode. Report shape is grounded on
// dialect/sql/schema/validate.go's ValidationResult{Errors,Warnings}; rule
// composite evaluation (all_of/any_of/not) is grounded on the privacy
// package's boolean-policy style (privacy/privacy.go).
package validate

import (
	"fmt"
	"sort"
	"strings"
)

// IssueKind enumerates the violation kinds of §4.4.
type IssueKind string

const (
	RequiredFieldMissing          IssueKind = "required_field_missing"
	PatternMismatch               IssueKind = "pattern_mismatch"
	RangeViolation                IssueKind = "range_violation"
	CardinalityViolation          IssueKind = "cardinality_violation"
	TypeMismatch                  IssueKind = "type_mismatch"
	EnumViolation                 IssueKind = "enum_violation"
	UnknownField                  IssueKind = "unknown_field"
	RuleViolation                 IssueKind = "rule_violation"
	ReferentialIntegrityViolation IssueKind = "referential_integrity_violation"
	MaxDepthExceeded              IssueKind = "max_depth_exceeded"
)

// Severity distinguishes hard errors from warnings (§7 "Warnings become
// errors only when strict=true").
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one violation found during validation.
type Issue struct {
	Path      string
	Kind      IssueKind
	Message   string
	Severity  Severity
	RuleTitle string
}

func (i Issue) String() string {
	if i.RuleTitle != "" {
		return fmt.Sprintf("%s: [%s] %s (rule %q)", i.Path, i.Kind, i.Message, i.RuleTitle)
	}
	return fmt.Sprintf("%s: [%s] %s", i.Path, i.Kind, i.Message)
}

// Stats summarizes the fields and rules evaluated during one run.
type Stats struct {
	FieldsChecked int
	RulesChecked  int
	MaxDepthSeen  int
}

// Report is the Validation Engine's output (§4.4 ValidationReport).
type Report struct {
	Valid  bool
	Issues []Issue
	Stats  Stats
}

// HasErrors reports whether the report contains any error-severity issue.
func (r *Report) HasErrors() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError || iss.Severity == "" {
			return true
		}
	}
	return false
}

// HasWarnings reports whether the report contains any warning-severity
// issue.
func (r *Report) HasWarnings() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Sort orders issues by (path, kind, message), the comparison order §5
// mandates for parallel-mode runs ("tests should sort by (path, kind,
// message) for comparison").
func (r *Report) Sort() {
	sort.Slice(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
}

// String renders a human-readable summary, mirroring
// dialect/sql/schema/validate.go's ValidationResult.String().
func (r *Report) String() string {
	if len(r.Issues) == 0 {
		return "valid: no issues found"
	}
	var sb strings.Builder
	if r.Valid {
		sb.WriteString("valid, with warnings:\n")
	} else {
		sb.WriteString("invalid:\n")
	}
	for _, iss := range r.Issues {
		sb.WriteString("  - ")
		sb.WriteString(iss.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// addIssue appends an issue. It does not touch Valid, which finalize
// derives from the collected issues (see Options.FailOnWarning).
func (r *Report) addIssue(iss Issue) {
	r.Issues = append(r.Issues, iss)
}

// finalize derives Valid from the collected issues given strict mode.
func (r *Report) finalize(failOnWarning bool) {
	r.Valid = true
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError || iss.Severity == "" {
			r.Valid = false
			return
		}
		if failOnWarning && iss.Severity == SeverityWarning {
			r.Valid = false
			return
		}
	}
}
