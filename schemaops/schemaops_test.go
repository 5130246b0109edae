package schemaops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/schemaops"
)

func buildSchema() *model.Schema {
	s := model.NewSchema("https://example.org/s", "s")
	s.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true})
	cls := model.NewClassDefinition("Person")
	cls.Slots = []string{"name"}
	s.Classes.Set("Person", cls)
	return s
}

func TestComputeDiff_ClassRemovedAndRangeChanged(t *testing.T) {
	from := buildSchema()
	from.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "string"})

	to := buildSchema()
	to.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})
	to.Classes.Delete("Person")

	d := schemaops.ComputeDiff(from, to)
	require.Len(t, d.Classes, 1)
	assert.Equal(t, schemaops.Removed, d.Classes[0].Kind)
	require.Len(t, d.Slots, 1)
	assert.Equal(t, schemaops.Modified, d.Slots[0].Kind)
}

func TestMerge_NoConflicts(t *testing.T) {
	base := buildSchema()
	overlay := model.NewSchema("https://example.org/s", "s")
	overlay.Slots.Set("email", &model.SlotDefinition{Name: "email", Range: "string"})

	merged, conflicts, err := schemaops.Merge(base, overlay, schemaops.MergeOptions{})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.True(t, merged.Slots.Has("name"))
	assert.True(t, merged.Slots.Has("email"))
}

func TestMerge_ConflictDetected(t *testing.T) {
	base := buildSchema()
	overlay := buildSchema()
	overlay.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "integer"})

	_, conflicts, err := schemaops.Merge(base, overlay, schemaops.MergeOptions{Strategy: schemaops.FailOnConflict})
	require.Error(t, err)
	require.NotEmpty(t, conflicts)
}

func TestLint_FindsDanglingIsA(t *testing.T) {
	s := buildSchema()
	cls, _ := s.Classes.Get("Person")
	cls.IsA = "Ghost"

	result := schemaops.Lint(s)
	assert.True(t, result.HasErrors())
}

func TestLint_FindsIdentifierRequiredViolation(t *testing.T) {
	s := buildSchema()
	s.Slots.Set("id", &model.SlotDefinition{Name: "id", Range: "string", Identifier: true, Required: false})
	result := schemaops.Lint(s)
	assert.True(t, result.HasErrors())
}
