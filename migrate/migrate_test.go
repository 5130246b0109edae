package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/ioformat"
	"github.com/schemaforge/schemaforge/migrate"
	"github.com/schemaforge/schemaforge/model"
)

func schemaV1() *model.Schema {
	s := model.NewSchema("https://example.org/s", "s")
	s.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "string"})
	old := model.NewClassDefinition("OldClass")
	s.Classes.Set("OldClass", old)
	person := model.NewClassDefinition("Person")
	person.Slots = []string{"age"}
	s.Classes.Set("Person", person)
	return s
}

func schemaV2() *model.Schema {
	s := model.NewSchema("https://example.org/s", "s")
	s.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})
	person := model.NewClassDefinition("Person")
	person.Slots = []string{"age"}
	s.Classes.Set("Person", person)
	return s
}

// TestAnalyze_RemovedClassAndRangeChange mirrors the spec's literal
// end-to-end "Migration plan risk" scenario: removing OldClass and
// changing age's range from string to integer yields two BreakingChanges
// and a Critical-risk plan.
func TestAnalyze_RemovedClassAndRangeChange(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	require.Len(t, changes, 2)

	var sawClassRemoved, sawTypeChanged bool
	for _, c := range changes {
		switch c.Kind {
		case migrate.ClassRemoved:
			sawClassRemoved = true
			assert.Equal(t, "OldClass", c.Element)
		case migrate.TypeChanged:
			sawTypeChanged = true
			assert.Equal(t, "age", c.Element)
		}
	}
	assert.True(t, sawClassRemoved)
	assert.True(t, sawTypeChanged)

	plan := migrate.BuildPlan(changes)
	assert.Equal(t, migrate.RiskCritical, plan.RiskLevel)
	assert.Len(t, plan.Steps, 3) // 2 changes + trailing validation step
}

func TestAnalyze_RenameInferredOnlyWhenMapped(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{
		ClassRenames: map[string]string{"OldClass": "Person"},
	})
	for _, c := range changes {
		assert.NotEqual(t, migrate.ClassRemoved, c.Kind, "a mapped rename must not also surface as a removal")
	}
}

func TestBuildPlan_ValidationStepDependsOnAll(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)

	var validation *migrate.MigrationStep
	for _, s := range plan.Steps {
		if s.Kind == migrate.StepValidation {
			validation = s
		}
	}
	require.NotNil(t, validation)
	assert.Len(t, validation.DependsOn, len(changes))
}

func TestTopoSort_StableOnTies(t *testing.T) {
	steps := []*migrate.MigrationStep{
		{ID: "step-2", Kind: migrate.StepDataMigration},
		{ID: "step-1", Kind: migrate.StepDataMigration},
		{ID: "validation", Kind: migrate.StepValidation, DependsOn: []string{"step-1", "step-2"}},
	}
	ordered, err := migrate.TopoSort(steps)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, "step-1", ordered[0].ID)
	assert.Equal(t, "step-2", ordered[1].ID)
	assert.Equal(t, "validation", ordered[2].ID)
}

func TestTopoSort_DetectsCycle(t *testing.T) {
	steps := []*migrate.MigrationStep{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}
	_, err := migrate.TopoSort(steps)
	assert.Error(t, err)
}

func TestExecute_DataMigrationCoercesAndValidates(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)

	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "42"}},
	}

	toSchema := schemaV2()
	_, out, report, err := migrate.Execute(context.Background(), plan, toSchema, instances, migrate.ExecuteOptions{
		ValidationClass: "Person",
	})
	require.NoError(t, err)
	require.True(t, report.Succeeded())
	require.Len(t, out, 1)
	assert.Equal(t, int64(42), out[0].Data["age"])
}

func TestExecute_DryRunNeverMutates(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)
	instances := []ioformat.DataInstance{{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "42"}}}

	_, out, report, err := migrate.Execute(context.Background(), plan, schemaV2(), instances, migrate.ExecuteOptions{
		DryRun:          true,
		ValidationClass: "Person",
	})
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.Equal(t, migrate.StepSimulated, res.Status)
	}
	assert.Equal(t, "42", out[0].Data["age"], "dry run must not mutate instance data")
}

func TestExecute_FailureTriggersRollback(t *testing.T) {
	plan := &migrate.Plan{
		Steps: []*migrate.MigrationStep{
			{ID: "step-1", Kind: migrate.StepDataMigration, Transform: migrate.CoerceType{Field: "age", To: "integer"}},
			{ID: "validation", Kind: migrate.StepValidation, DependsOn: []string{"step-1"}},
		},
	}
	instances := []ioformat.DataInstance{{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "not-a-number"}}}

	_, _, report, err := migrate.Execute(context.Background(), plan, schemaV2(), instances, migrate.ExecuteOptions{
		ValidationClass: "Person",
	})
	require.Error(t, err)
	assert.True(t, report.RolledBack)
	assert.False(t, report.Succeeded())
}

func TestTransformSpecRoundTrip(t *testing.T) {
	transforms := []migrate.Transform{
		migrate.RenameField{From: "old", To: "new"},
		migrate.CoerceType{Field: "age", To: "integer"},
		migrate.ValueTransform{Field: "name", Op: migrate.OpTrim},
		migrate.SplitField{Field: "full_name", Delimiter: " ", Into: []string{"first", "last"}},
		migrate.MergeField{Fields: []string{"first", "last"}, Joiner: " ", Into: "full_name"},
		migrate.DefaultValue{Field: "status", Value: "active"},
	}
	for _, tr := range transforms {
		spec := migrate.TransformSpec(tr)
		require.NotNil(t, spec, "spec for %s", tr.Name())
		back, err := migrate.ParseTransform(spec)
		require.NoError(t, err)
		assert.Equal(t, tr, back)
	}
}

func TestParseTransform_UnknownTypeRejected(t *testing.T) {
	_, err := migrate.ParseTransform(map[string]any{"type": "teleport"})
	assert.Error(t, err)
	_, err = migrate.ParseTransform(map[string]any{})
	assert.Error(t, err)
}

func TestPlanFileRoundTrip(t *testing.T) {
	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)

	data, err := migrate.MarshalPlan(plan)
	require.NoError(t, err)

	back, err := migrate.UnmarshalPlan(data)
	require.NoError(t, err)
	assert.Equal(t, plan.RiskLevel, back.RiskLevel)
	require.Len(t, back.Steps, len(plan.Steps))
	for i, step := range plan.Steps {
		assert.Equal(t, step.ID, back.Steps[i].ID)
		assert.Equal(t, step.Kind, back.Steps[i].Kind)
		assert.Equal(t, step.DependsOn, back.Steps[i].DependsOn)
		assert.Equal(t, step.Transform, back.Steps[i].Transform)
	}
}

func TestExecuteFile_TransformsAndSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yaml")
	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "42"}},
	}
	require.NoError(t, migrate.SaveDataFile(path, instances))

	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)

	_, report, err := migrate.ExecuteFile(context.Background(), plan, schemaV2(), path, migrate.ExecuteOptions{
		ValidationClass: "Person",
	})
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	migrated, err := migrate.LoadDataFile(path)
	require.NoError(t, err)
	require.Len(t, migrated, 1)
	assert.EqualValues(t, 42, migrated[0].Data["age"])

	_, err = os.Stat(path + migrate.BackupSuffix)
	assert.NoError(t, err, "a .backup copy must exist after a mutating run")
}

func TestExecuteFile_RollbackRestoresBackupByteIdentical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yaml")
	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "not-a-number"}},
	}
	require.NoError(t, migrate.SaveDataFile(path, instances))
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	plan := &migrate.Plan{Steps: []*migrate.MigrationStep{
		{ID: "step-1", Kind: migrate.StepDataMigration, Transform: migrate.CoerceType{Field: "age", To: "integer"}, RollbackStrategy: migrate.RollbackRestoreBackup},
		{ID: "validation", Kind: migrate.StepValidation, DependsOn: []string{"step-1"}},
	}}

	_, report, err := migrate.ExecuteFile(context.Background(), plan, schemaV2(), path, migrate.ExecuteOptions{
		ValidationClass: "Person",
	})
	require.Error(t, err)
	require.True(t, report.RolledBack)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, after, "rollback must leave the data file byte-identical to the input")
}

func TestExecuteFile_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yaml")
	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "p1", Data: map[string]any{"age": "42"}},
	}
	require.NoError(t, migrate.SaveDataFile(path, instances))
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	changes := migrate.Analyze(schemaV1(), schemaV2(), migrate.AnalyzeOptions{})
	plan := migrate.BuildPlan(changes)

	_, report, err := migrate.ExecuteFile(context.Background(), plan, schemaV2(), path, migrate.ExecuteOptions{
		DryRun:          true,
		ValidationClass: "Person",
	})
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.Equal(t, migrate.StepSimulated, res.Status)
	}

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, after)
	_, err = os.Stat(path + migrate.BackupSuffix)
	assert.True(t, os.IsNotExist(err), "dry run must not create a backup")
}

func TestExecute_RecordCountConstraint(t *testing.T) {
	plan := &migrate.Plan{Steps: []*migrate.MigrationStep{
		{ID: "validation", Kind: migrate.StepValidation},
	}}
	instances := []ioformat.DataInstance{
		{ClassName: "Person", Data: map[string]any{"age": 1.0}},
		{ClassName: "Person", Data: map[string]any{"age": 2.0}},
	}
	_, _, _, err := migrate.Execute(context.Background(), plan, schemaV2(), instances, migrate.ExecuteOptions{
		ValidationClass: "Person",
		Perf:            &migrate.PerformanceConstraints{MaxRecordCount: 1},
	})
	assert.Error(t, err)
}

func TestExecute_SkipValidation(t *testing.T) {
	plan := &migrate.Plan{Steps: []*migrate.MigrationStep{
		{ID: "validation", Kind: migrate.StepValidation},
	}}
	instances := []ioformat.DataInstance{
		{ClassName: "Person", Data: map[string]any{"age": "not-an-integer-at-all"}},
	}
	_, _, report, err := migrate.Execute(context.Background(), plan, schemaV2(), instances, migrate.ExecuteOptions{
		ValidationClass: "Person",
		SkipValidation:  true,
	})
	require.NoError(t, err)
	assert.True(t, report.Succeeded())
}

func TestValidateData_ReportsPerInstance(t *testing.T) {
	instances := []ioformat.DataInstance{
		{ClassName: "Person", Data: map[string]any{"age": 42.0}},
		{ClassName: "Person", Data: map[string]any{"age": "nope"}},
	}
	reports, err := migrate.ValidateData(context.Background(), schemaV2(), instances, "Person")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Valid)
	assert.False(t, reports[1].Valid)
}
