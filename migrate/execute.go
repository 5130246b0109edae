package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/ioformat"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
	"github.com/schemaforge/schemaforge/validate"
)

// PerformanceConstraints are the optional declared limits the Validation
// step enforces alongside schema compliance (§4.5 "optionally, declared
// performance constraints (max file size, max record count)"). Zero
// values disable a constraint.
type PerformanceConstraints struct {
	MaxFileSize    int64
	MaxRecordCount int
}

// ExecuteOptions configures one Execute call (§4.5 "Execution").
type ExecuteOptions struct {
	// DryRun simulates every step: no schema mutation, no backup, no data
	// file rewrite. Each step's StepResult.Status is StepSimulated.
	DryRun bool
	// Backup is called once before the first mutating step, receiving the
	// pre-migration schema and instances so the caller can persist them.
	// A nil Backup is a no-op — Execute still records the step's rollback
	// strategy, but "restore_backup" rollback has nothing to restore from.
	Backup func(schema *model.Schema, instances []ioformat.DataInstance) error
	// ValidationClass is the class name the trailing Validation step checks
	// each instance against. Required when instances is non-empty.
	ValidationClass string
	// SkipValidation turns the trailing Validation step into a no-op,
	// matching the §6 command surface's {skip_validation} flag.
	SkipValidation bool
	// Perf, when set, is enforced by the Validation step (record count)
	// and by ExecuteFile (file size).
	Perf *PerformanceConstraints
}

// Execute runs plan's steps in topological order against schema and
// instances, returning the mutated schema, the transformed instances, and
// an ExecutionReport (§4.5 "Execution": "steps run in dependency order;
// a data migration failure triggers rollback of every step that already
// completed, via each step's RollbackStrategy, then the run stops").
func Execute(ctx context.Context, plan *Plan, schema *model.Schema, instances []ioformat.DataInstance, opts ExecuteOptions) (*model.Schema, []ioformat.DataInstance, *ExecutionReport, error) {
	ordered, err := TopoSort(plan.Steps)
	if err != nil {
		return nil, nil, nil, err
	}

	workingSchema := schema
	workingInstances := instances
	report := &ExecutionReport{}
	backedUp := false

	var completed []*MigrationStep

	for _, step := range ordered {
		if err := ctx.Err(); err != nil {
			break
		}

		if !opts.DryRun && !backedUp && step.Kind != StepValidation && opts.Backup != nil {
			if err := opts.Backup(workingSchema, workingInstances); err != nil {
				return nil, nil, nil, fmt.Errorf("migrate: backup failed before step %q: %w", step.ID, err)
			}
			backedUp = true
		}

		start := time.Now()
		result := StepResult{StepID: step.ID}

		var stepErr error
		switch {
		case opts.DryRun:
			result.Status = StepSimulated
			result.RecordsProcessed = len(workingInstances)
		case step.Kind == StepSchemaTransform:
			workingSchema, stepErr = applySchemaTransform(workingSchema, step.Change)
			result.RecordsProcessed = 1
		case step.Kind == StepDataMigration:
			workingInstances, result.RecordsProcessed, stepErr = applyDataMigration(workingInstances, step.Transform)
		case step.Kind == StepValidation:
			if !opts.SkipValidation {
				stepErr = runValidationStep(ctx, workingSchema, workingInstances, opts, &result)
			}
		}

		result.Duration = time.Since(start)
		if stepErr != nil {
			result.Status = StepFailed
			result.Err = stepErr
			report.Results = append(report.Results, result)
			rollback(completed, &report.Results)
			report.RolledBack = true
			return workingSchema, workingInstances, report, stepErr
		}

		if result.Status == "" {
			result.Status = StepSucceeded
		}
		report.Results = append(report.Results, result)
		completed = append(completed, step)
	}

	return workingSchema, workingInstances, report, nil
}

// applySchemaTransform mutates schema in place to reflect a ClassRemoved,
// ClassRenamed, SlotRemoved or SlotRenamed change, cascading the removal
// into any is_a/mixins/slots reference that would otherwise dangle (§4.5
// "schema transform ... cascades into dependent is_a/mixins/slots
// references").
func applySchemaTransform(schema *model.Schema, change *BreakingChange) (*model.Schema, error) {
	if change == nil {
		return schema, nil
	}
	switch change.Kind {
	case ClassRemoved:
		schema.Classes.Delete(change.Element)
		for _, name := range schema.Classes.Keys() {
			cls, _ := schema.Classes.Get(name)
			if cls.IsA == change.Element {
				cls.IsA = ""
			}
			cls.Mixins = removeString(cls.Mixins, change.Element)
		}
	case ClassRenamed:
		cls, ok := schema.Classes.Get(change.Element)
		if !ok {
			return schema, schemaforge.NewNotFoundError("class", change.Element)
		}
		schema.Classes.Delete(change.Element)
		cls.Name = change.RenameTo
		schema.Classes.Set(change.RenameTo, cls)
		for _, name := range schema.Classes.Keys() {
			other, _ := schema.Classes.Get(name)
			if other.IsA == change.Element {
				other.IsA = change.RenameTo
			}
			other.Mixins = renameString(other.Mixins, change.Element, change.RenameTo)
		}
	case SlotRemoved:
		schema.Slots.Delete(change.Element)
		for _, name := range schema.Classes.Keys() {
			cls, _ := schema.Classes.Get(name)
			cls.Slots = removeString(cls.Slots, change.Element)
		}
	case SlotRenamed:
		slot, ok := schema.Slots.Get(change.Element)
		if !ok {
			return schema, schemaforge.NewNotFoundError("slot", change.Element)
		}
		schema.Slots.Delete(change.Element)
		slot.Name = change.RenameTo
		schema.Slots.Set(change.RenameTo, slot)
		for _, name := range schema.Classes.Keys() {
			cls, _ := schema.Classes.Get(name)
			cls.Slots = renameString(cls.Slots, change.Element, change.RenameTo)
		}
	}
	return schema, nil
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func renameString(list []string, from, to string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		if s == from {
			out[i] = to
		} else {
			out[i] = s
		}
	}
	return out
}

// applyDataMigration runs transform over every instance's Data map,
// returning the count of records it actually touched.
func applyDataMigration(instances []ioformat.DataInstance, transform Transform) ([]ioformat.DataInstance, int, error) {
	if transform == nil {
		return instances, 0, nil
	}
	out := make([]ioformat.DataInstance, len(instances))
	processed := 0
	for i, inst := range instances {
		data, err := transform.Apply(inst.Data)
		if err != nil {
			return nil, processed, fmt.Errorf("migrate: transform %q on record %d: %w", transform.Name(), i, err)
		}
		inst.Data = data
		out[i] = inst
		processed++
	}
	return out, processed, nil
}

// runValidationStep is the sole compliance-check path (spec.md §9 Open
// Question): it resolves schema once and calls validate.Validate for
// every instance, never a duplicate ad-hoc field walk.
func runValidationStep(ctx context.Context, schema *model.Schema, instances []ioformat.DataInstance, opts ExecuteOptions, result *StepResult) error {
	if opts.Perf != nil && opts.Perf.MaxRecordCount > 0 && len(instances) > opts.Perf.MaxRecordCount {
		return schemaforge.NewConfigError("max_record_count", len(instances),
			"migrated data exceeds the declared record-count constraint")
	}
	if len(instances) == 0 {
		return nil
	}
	reports, err := ValidateData(ctx, schema, instances, opts.ValidationClass)
	if err != nil {
		return err
	}
	for i, report := range reports {
		if report.HasErrors() {
			return fmt.Errorf("migrate: migrated record %q fails validation: %s", instances[i].ID, report.Issues[0].Message)
		}
		result.RecordsProcessed++
	}
	return nil
}

// ValidateData checks every instance against schema, returning one
// validation report per instance in input order. It is the §6 migration
// command surface's `validate(version, data)` operation; instances with no
// ClassName fall back to defaultClass.
func ValidateData(ctx context.Context, schema *model.Schema, instances []ioformat.DataInstance, defaultClass string) ([]*validate.Report, error) {
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		return nil, fmt.Errorf("migrate: resolving schema for validation: %w", err)
	}
	vopts, err := validate.NewOptions()
	if err != nil {
		return nil, err
	}
	reports := make([]*validate.Report, 0, len(instances))
	for _, inst := range instances {
		cls := inst.ClassName
		if cls == "" {
			cls = defaultClass
		}
		report, err := validate.Validate(ctx, resolved, cls, validate.Instance(inst.Data), vopts)
		if err != nil {
			return nil, fmt.Errorf("migrate: validating record %q: %w", inst.ID, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// rollback walks completed steps in reverse, recording a StepRolledBack
// result per step per its RollbackStrategy. "restore_backup" and
// "reverse_transform" are both caller-owned restores of the backup taken
// before the first mutation; Execute only records that a rollback was
// required, since the schema/instance values Execute returns already
// reflect the state at the point of failure.
func rollback(completed []*MigrationStep, results *[]StepResult) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		*results = append(*results, StepResult{
			StepID: step.ID,
			Status: StepRolledBack,
		})
	}
}
