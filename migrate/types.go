// Package migrate implements the Schema-Evolution Engine (spec.md §4.5):
// breaking-change analysis between two schema versions, migration-plan
// construction with risk assessment, step execution with backup/rollback,
// and instance-data transformation.
//
// Grounded on compiler/gen/sql/versioned_migration.go (Migration,
// MigrationRunner, Status/Up, transaction-scoped execution with
// rollback-on-error) for the execution/rollback shape, and supplemented by
// original_source/service/src/migration.rs for the transform catalogue
// (rename, type coerce, split/merge, default injection) the teacher has no
// analogue for. The Validation step (§4.5 execution step 2) is the single
// authoritative compliance-check path (spec.md §9 Open Question): it calls
// package validate exclusively, never a duplicate ad-hoc class/slot walk.
package migrate

import "time"

// ChangeKind enumerates the breaking-change categories of §4.5.
type ChangeKind string

const (
	ClassRemoved        ChangeKind = "class_removed"
	ClassRenamed        ChangeKind = "class_renamed"
	SlotRemoved         ChangeKind = "slot_removed"
	SlotRenamed         ChangeKind = "slot_renamed"
	TypeChanged         ChangeKind = "type_changed"
	RequiredAdded       ChangeKind = "required_added"
	CardinalityNarrowed ChangeKind = "cardinality_narrowed"
	EnumValuesRemoved   ChangeKind = "enum_values_removed"
)

// StrategyKind tags which MigrationStrategy variant is populated.
type StrategyKind string

const (
	StrategyAutomatic    StrategyKind = "automatic"
	StrategyManual       StrategyKind = "manual"
	StrategyDataLoss     StrategyKind = "data_loss"
	StrategyDefaultValue StrategyKind = "default_value"
)

// MigrationStrategy is a tagged union over the four remediation shapes of
// §4.5 ("Each change carries a MigrationStrategy").
type MigrationStrategy struct {
	Kind          StrategyKind
	TransformName string // StrategyAutomatic
	Instructions  string // StrategyManual
	Warning       string // StrategyDataLoss
	Default       any    // StrategyDefaultValue
}

// BreakingChange is one incompatibility found by Analyze.
type BreakingChange struct {
	Kind     ChangeKind
	Element  string // class or slot name
	RenameTo string // populated for *Renamed kinds
	Detail   string
	Strategy MigrationStrategy
}

// RiskLevel is the maximum severity across a plan's changes (§4.5 "Plan
// construction").
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}

func maxRisk(a, b RiskLevel) RiskLevel {
	if riskOrder[b] > riskOrder[a] {
		return b
	}
	return a
}

// riskOf computes the per-change risk dominance table from §4.5: "Compute a
// RiskLevel as the max of: ClassRemoved -> Critical, TypeChanged -> High,
// any change -> Medium, none -> Low."
func riskOf(kind ChangeKind) RiskLevel {
	switch kind {
	case ClassRemoved:
		return RiskCritical
	case TypeChanged:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// StepKind is one of the three execution-step shapes of §4.5.
type StepKind string

const (
	StepSchemaTransform StepKind = "schema_transform"
	StepDataMigration   StepKind = "data_migration"
	StepValidation      StepKind = "validation"
)

// RollbackStrategy names how a completed step is undone on later failure.
type RollbackStrategy string

const (
	RollbackRestoreBackup    RollbackStrategy = "restore_backup"
	RollbackReverseTransform RollbackStrategy = "reverse_transform"
	RollbackManual           RollbackStrategy = "manual"
)

// MigrationStep is one unit of plan execution (§4.5 "Plan construction").
type MigrationStep struct {
	ID               string
	Kind             StepKind
	DependsOn        []string
	Change           *BreakingChange // nil for the trailing Validation step
	Transform        Transform       // populated for StepDataMigration
	RollbackStrategy RollbackStrategy
}

// Plan is the full migration plan: one step per change plus a trailing
// Validation step depending on all of them.
type Plan struct {
	Steps     []*MigrationStep
	RiskLevel RiskLevel
}

// StepStatus is the outcome of running one MigrationStep.
type StepStatus string

const (
	StepSucceeded  StepStatus = "succeeded"
	StepFailed     StepStatus = "failed"
	StepSimulated  StepStatus = "simulated"
	StepRolledBack StepStatus = "rolled_back"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	StepID           string
	Status           StepStatus
	Duration         time.Duration
	RecordsProcessed int
	Err              error
}

// ExecutionReport is the outcome of one Execute call.
type ExecutionReport struct {
	Results    []StepResult
	RolledBack bool
}

// Succeeded reports whether every step in the report succeeded (or was
// simulated) without triggering a rollback.
func (r *ExecutionReport) Succeeded() bool {
	if r.RolledBack {
		return false
	}
	for _, res := range r.Results {
		if res.Status == StepFailed {
			return false
		}
	}
	return true
}
