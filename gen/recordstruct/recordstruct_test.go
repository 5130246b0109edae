package recordstruct_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/gen/recordstruct"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func TestGenerate_StructAndAccessor(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true})
	schema.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"name", "age"}
	schema.Classes.Set("Person", person)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	g := recordstruct.New()
	opts, err := gen.NewOptions(gen.WithPackageName("model"))
	require.NoError(t, err)

	files, err := g.Generate(resolved, opts)
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := string(files[0].Content)
	assert.Contains(t, content, "type Person struct")
	assert.Contains(t, content, "Name string")
	assert.Contains(t, content, "Age  *int64")
	assert.Contains(t, content, "func (x *Person) GetName() string")
}
