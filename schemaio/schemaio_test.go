package schemaio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/schemaio"
)

func sampleSchema() *model.Schema {
	s := model.NewSchema("https://example.org/person", "person")
	s.Description = "a minimal schema"
	s.Prefixes.Set("ex", model.Prefix{PrefixReference: "https://example.org/"})
	s.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Required: true})
	s.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer"})

	person := model.NewClassDefinition("Person")
	person.Slots = []string{"name", "age"}
	s.Classes.Set("Person", person)

	s.Enums.Set("Status", &model.EnumDefinition{
		Name:              "Status",
		PermissibleValues: []model.PermissibleValue{{Text: "ACTIVE"}, {Text: "INACTIVE"}},
	})
	return s
}

func TestRoundTrip_YAML(t *testing.T) {
	original := sampleSchema()

	out, err := schemaio.Serialize(original, schemaio.FormatYAML)
	require.NoError(t, err)

	parsed, err := schemaio.Parse(out, schemaio.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, original.ID, parsed.ID)
	assert.Equal(t, original.Slots.Keys(), parsed.Slots.Keys())
	name, ok := parsed.Slots.Get("name")
	require.True(t, ok)
	assert.True(t, name.Required)
	assert.Equal(t, []string{"name", "age"}, func() []string {
		cls, _ := parsed.Classes.Get("Person")
		return cls.Slots
	}())
}

func TestRoundTrip_JSON(t *testing.T) {
	original := sampleSchema()

	out, err := schemaio.Serialize(original, schemaio.FormatJSON)
	require.NoError(t, err)

	parsed, err := schemaio.Parse(out, schemaio.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, original.Classes.Keys(), parsed.Classes.Keys())
	enum, ok := parsed.Enums.Get("Status")
	require.True(t, ok)
	assert.Len(t, enum.PermissibleValues, 2)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, schemaio.FormatJSON, schemaio.DetectFormat([]byte("  {\"id\": \"x\"}")))
	assert.Equal(t, schemaio.FormatYAML, schemaio.DetectFormat([]byte("id: x\nname: y\n")))
}

func TestParse_UnrecognizedFormat(t *testing.T) {
	_, err := schemaio.Parse([]byte("id: x"), schemaio.Format("toml"))
	assert.Error(t, err)
}
