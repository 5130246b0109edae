package migrate

import (
	"fmt"
	"sort"
	"strings"
)

// BuildPlan emits one MigrationStep per change plus a final Validation step
// that depends on all preceding steps (§4.5 "Plan construction"). Each
// change's Kind determines whether the step is a schema transform or a
// data migration; for a data migration, the change's MigrationStrategy.Kind
// picks its Transform and rollback strategy.
func BuildPlan(changes []BreakingChange) *Plan {
	plan := &Plan{RiskLevel: RiskLow}
	var dataSteps []string

	for i, change := range changes {
		id := fmt.Sprintf("step-%d", i+1)
		step := &MigrationStep{ID: id, Change: &change}

		switch change.Kind {
		case ClassRemoved, ClassRenamed, SlotRemoved, SlotRenamed:
			step.Kind = StepSchemaTransform
			step.RollbackStrategy = RollbackRestoreBackup
		case TypeChanged, RequiredAdded, CardinalityNarrowed, EnumValuesRemoved:
			step.Kind = StepDataMigration
			step.Transform = transformFor(change)
			if change.Strategy.Kind == StrategyAutomatic {
				step.RollbackStrategy = RollbackRestoreBackup
			} else {
				step.RollbackStrategy = RollbackManual
			}
		}

		plan.Steps = append(plan.Steps, step)
		dataSteps = append(dataSteps, id)
		plan.RiskLevel = maxRisk(plan.RiskLevel, riskOf(change.Kind))
	}

	if len(changes) == 0 {
		plan.RiskLevel = RiskLow
	}

	plan.Steps = append(plan.Steps, &MigrationStep{
		ID:        "validation",
		Kind:      StepValidation,
		DependsOn: dataSteps,
	})

	return plan
}

// transformFor maps a BreakingChange's MigrationStrategy to the concrete
// Transform that implements it, when the strategy is Automatic. Manual and
// DataLoss strategies have no Transform — the step still appears in the
// plan so its RiskLevel and rollback instructions surface, but executing
// it leaves the data unchanged and its StepResult reports success with
// zero records affected.
func transformFor(change BreakingChange) Transform {
	switch change.Strategy.Kind {
	case StrategyAutomatic:
		switch change.Strategy.TransformName {
		case "rename_field":
			return RenameField{From: change.Element, To: change.RenameTo}
		case "coerce_type":
			return CoerceType{Field: change.Element, To: coerceTargetFromDetail(change.Detail)}
		}
	case StrategyDefaultValue:
		return DefaultValue{Field: change.Element, Value: change.Strategy.Default}
	}
	return nil
}

// coerceTargetFromDetail extracts the "-> newtype" side of a diff Detail
// string of the form `range: "oldtype" -> "newtype"`.
func coerceTargetFromDetail(detail string) string {
	const marker = `-> "`
	i := strings.Index(detail, marker)
	if i < 0 {
		return "string"
	}
	rest := detail[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return "string"
}

// TopoSort returns the plan's steps ordered so every step appears after
// everything it DependsOn, ties broken by step ID (§5 "Within a migration
// plan, step execution follows a topological sort of depends_on that is
// stable across runs (ties broken by step ID)").
func TopoSort(steps []*MigrationStep) ([]*MigrationStep, error) {
	byID := make(map[string]*MigrationStep, len(steps))
	indegree := make(map[string]int, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
		if _, ok := indegree[s.ID]; !ok {
			indegree[s.ID] = 0
		}
	}
	dependents := make(map[string][]string)
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			dependents[dep] = append(dependents[dep], s.ID)
			indegree[s.ID]++
		}
	}

	var ready []string
	for _, s := range steps {
		if indegree[s.ID] == 0 {
			ready = append(ready, s.ID)
		}
	}

	var out []*MigrationStep
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		out = append(out, byID[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) != len(steps) {
		return nil, fmt.Errorf("migrate: plan has a dependency cycle")
	}
	return out, nil
}
