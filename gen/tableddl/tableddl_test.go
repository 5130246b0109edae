package tableddl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/gen/tableddl"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func generate(t *testing.T, schema *model.Schema, opts ...gen.Option) string {
	t.Helper()
	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	g := tableddl.New()
	require.NoError(t, g.ValidateSchema(resolved))

	o, err := gen.NewOptions(opts...)
	require.NoError(t, err)

	files, err := g.Generate(resolved, o)
	require.NoError(t, err)
	require.Len(t, files, 1)
	return string(files[0].Content)
}

func TestGenerate_ScalarColumnsAndPrimaryKey(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true, Identifier: true})
	schema.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"name", "age"}
	schema.Classes.Set("Person", person)

	out := generate(t, schema)
	assert.Contains(t, out, "CREATE TABLE people (")
	assert.Contains(t, out, "name VARCHAR(255) NOT NULL")
	assert.Contains(t, out, "age BIGINT")
	assert.Contains(t, out, "PRIMARY KEY (name)")
}

func TestGenerate_ForeignKeyForSingleValuedClassSlot(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("employer", &model.SlotDefinition{Name: "employer", Range: "Organization"})

	org := model.NewClassDefinition("Organization")
	schema.Classes.Set("Organization", org)

	employee := model.NewClassDefinition("Employee")
	employee.Slots = []string{"employer"}
	schema.Classes.Set("Employee", employee)

	out := generate(t, schema)
	assert.Contains(t, out, "employer_id")
	assert.Contains(t, out, "FOREIGN KEY (employer_id) REFERENCES organizations (id)")
}

func TestGenerate_JoinTableForMultivaluedClassSlot(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("tags", &model.SlotDefinition{Name: "tags", Range: "Tag", Multivalued: true})

	tag := model.NewClassDefinition("Tag")
	schema.Classes.Set("Tag", tag)

	article := model.NewClassDefinition("Article")
	article.Slots = []string{"tags"}
	schema.Classes.Set("Article", article)

	out := generate(t, schema)
	assert.Contains(t, out, "CREATE TABLE articles_tags (")
	assert.Contains(t, out, "article_id")
	assert.Contains(t, out, "tag_id")
}

func TestGenerate_ValueTableForMultivaluedPrimitiveSlot(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("aliases", &model.SlotDefinition{Name: "aliases", Range: "string", Multivalued: true})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"aliases"}
	schema.Classes.Set("Person", person)

	out := generate(t, schema)
	assert.Contains(t, out, "CREATE TABLE people_aliases (")
	assert.Contains(t, out, "person_id")
	assert.Contains(t, out, "value VARCHAR(255) NOT NULL")
}

func TestValidateSchema_RejectsMultivaluedIdentifier(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("codes", &model.SlotDefinition{Name: "codes", Range: "string", Identifier: true, Required: true, Multivalued: true})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"codes"}
	schema.Classes.Set("Person", person)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	err = tableddl.New().ValidateSchema(resolved)
	assert.Error(t, err)
}
