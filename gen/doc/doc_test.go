package doc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/gen/doc"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func TestGenerate_ClassSectionAndSlotTable(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "demo")
	schema.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true, Description: "the person's name"})
	schema.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})

	person := model.NewClassDefinition("Person")
	person.Description = "A human being."
	person.Slots = []string{"name", "age"}
	schema.Classes.Set("Person", person)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	g := doc.New()
	opts, err := gen.NewOptions()
	require.NoError(t, err)

	files, err := g.Generate(resolved, opts)
	require.NoError(t, err)
	require.Len(t, files, 1)

	out := string(files[0].Content)
	assert.Contains(t, out, "## Person")
	assert.Contains(t, out, "A human being.")
	assert.Contains(t, out, "| name | string | yes | no | the person's name |")
	assert.Contains(t, out, "| age | integer | no | no |")
}

func TestGenerate_EnumSection(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "demo")
	schema.Enums.Set("Status", &model.EnumDefinition{
		Name:              "Status",
		PermissibleValues: []model.PermissibleValue{{Text: "active", Description: "currently active"}},
	})

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	files, err := doc.New().Generate(resolved, nil)
	require.NoError(t, err)
	out := string(files[0].Content)
	assert.Contains(t, out, "## Status (enum)")
	assert.Contains(t, out, "- `active` — currently active")
}
