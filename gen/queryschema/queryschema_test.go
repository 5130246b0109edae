package queryschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/gen/queryschema"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func generate(t *testing.T, schema *model.Schema) string {
	t.Helper()
	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	g := queryschema.New()
	opts, err := gen.NewOptions()
	require.NoError(t, err)

	files, err := g.Generate(resolved, opts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	return string(files[0].Content)
}

func TestGenerate_ObjectTypeAndRootQuery(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true})
	schema.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"name", "age"}
	schema.Classes.Set("Person", person)

	out := generate(t, schema)
	assert.Contains(t, out, "type Person {")
	assert.Contains(t, out, "name: String!")
	assert.Contains(t, out, "age: Int")
	assert.Contains(t, out, "type Query {")
	assert.Contains(t, out, "people: [Person!]!")
}

func TestGenerate_EnumType(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Enums.Set("Status", &model.EnumDefinition{
		Name: "Status",
		PermissibleValues: []model.PermissibleValue{
			{Text: "active"}, {Text: "inactive"},
		},
	})

	out := generate(t, schema)
	assert.Contains(t, out, "enum Status {")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "inactive")
}

func TestGenerate_MultivaluedSlotIsNonNullList(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("aliases", &model.SlotDefinition{Name: "aliases", Range: "string", Multivalued: true})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"aliases"}
	schema.Classes.Set("Person", person)

	out := generate(t, schema)
	assert.Contains(t, out, "aliases: [String!]!")
}
