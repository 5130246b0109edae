package resolve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func namedSlot(name, rng string, required bool) *model.SlotDefinition {
	return &model.SlotDefinition{Name: name, Range: rng, Required: required}
}

func TestResolve_EffectiveSlots_Inheritance(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", namedSlot("name", "string", true))
	schema.Slots.Set("age", namedSlot("age", "integer", false))

	animal := model.NewClassDefinition("Animal")
	animal.Slots = []string{"name"}
	schema.Classes.Set("Animal", animal)

	dog := model.NewClassDefinition("Dog")
	dog.IsA = "Animal"
	dog.Slots = []string{"age"}
	schema.Classes.Set("Dog", dog)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	rc, ok := resolved.Class("Dog")
	require.True(t, ok)
	require.Len(t, rc.EffectiveSlots, 1)
	assert.Equal(t, "age", rc.EffectiveSlots[0].Name)
	assert.Equal(t, []string{"Animal"}, rc.Ancestors)
}

func TestResolve_SlotUsageOverridePrecedence(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", namedSlot("name", "string", false))

	animal := model.NewClassDefinition("Animal")
	animal.Slots = []string{"name"}
	animal.SlotUsage.Set("name", &model.SlotDefinition{Required: true})
	schema.Classes.Set("Animal", animal)

	dog := model.NewClassDefinition("Dog")
	dog.IsA = "Animal"
	dog.SlotUsage.Set("name", &model.SlotDefinition{Pattern: "^[A-Z]"})
	schema.Classes.Set("Dog", dog)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	rc, _ := resolved.Class("Dog")
	require.Len(t, rc.EffectiveSlots, 1)
	slot := rc.EffectiveSlots[0]
	assert.True(t, slot.Required, "required should be inherited from Animal's slot_usage")
	assert.Equal(t, "^[A-Z]", slot.Pattern, "pattern should come from Dog's own slot_usage")
}

func TestResolve_InheritanceCycle(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	a := model.NewClassDefinition("A")
	a.IsA = "B"
	b := model.NewClassDefinition("B")
	b.IsA = "A"
	schema.Classes.Set("A", a)
	schema.Classes.Set("B", b)

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsInheritanceCycleError(err))
}

func TestResolve_Idempotent(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", namedSlot("name", "string", true))
	cls := model.NewClassDefinition("Thing")
	cls.Slots = []string{"name"}
	schema.Classes.Set("Thing", cls)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	ok, err := resolved.Idempotent()
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := resolve.Resolve(schema)
	require.NoError(t, err)
	if diff := resolved.Diff(again); diff != "" {
		t.Errorf("resolve(resolve(s)) != resolve(s) (-first +second):\n%s", diff)
	}
}

func TestResolve_SlotUsageOverridePrecedence_StructuralDiff(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", namedSlot("name", "string", false))

	animal := model.NewClassDefinition("Animal")
	animal.Slots = []string{"name"}
	animal.SlotUsage.Set("name", &model.SlotDefinition{Required: true})
	schema.Classes.Set("Animal", animal)

	dog := model.NewClassDefinition("Dog")
	dog.IsA = "Animal"
	dog.SlotUsage.Set("name", &model.SlotDefinition{Pattern: "^[A-Z]"})
	schema.Classes.Set("Dog", dog)

	first, err := resolve.Resolve(schema)
	require.NoError(t, err)
	second, err := resolve.Resolve(schema)
	require.NoError(t, err)

	// A fresh Resolve call produces a structurally equal, but not
	// pointer-identical, tree: go-cmp must walk through the OrderedMap
	// fields on ClassDefinition/SlotDefinition via their Equal method
	// rather than via reflection into unexported fields.
	if diff := cmp.Diff(first.Classes, second.Classes); diff != "" {
		t.Errorf("resolved views differ across identical runs (-first +second):\n%s", diff)
	}
}

func TestExpandCURIE(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.DefaultPrefix = "ex"
	schema.Prefixes.Set("ex", model.Prefix{PrefixReference: "https://example.org/"})

	got, err := resolve.ExpandCURIE(schema, "ex:Person")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/Person", got)

	got2, err := resolve.ExpandCURIE(schema, "Person")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/Person", got2)

	_, err = resolve.ExpandCURIE(schema, "unknown:Person")
	require.Error(t, err)
	assert.True(t, schemaforge.IsUnknownPrefixError(err))
}

func TestContractURI_LongestMatchWins(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Prefixes.Set("ex", model.Prefix{PrefixReference: "https://example.org/"})
	schema.Prefixes.Set("exp", model.Prefix{PrefixReference: "https://example.org/people/"})

	got, ok := resolve.ContractURI(schema, "https://example.org/people/42")
	require.True(t, ok)
	assert.Equal(t, "exp:42", got)

	_, ok = resolve.ContractURI(schema, "https://other.org/x")
	assert.False(t, ok)
}

func TestCanonicalizeIdentifier(t *testing.T) {
	cases := []struct {
		in     string
		flavor resolve.Flavor
		want   string
	}{
		{"HTTPSConnection", resolve.KebabCase, "https-connection"},
		{"has_part", resolve.KebabCase, "has-part"},
		{"PersonName", resolve.KebabCase, "person-name"},
		{"person_name", resolve.PascalCase, "PersonName"},
		{"PersonName", resolve.SnakeCase, "person_name"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, resolve.CanonicalizeIdentifier(c.in, c.flavor), "input=%s", c.in)
	}
}

func TestResolve_DanglingParentRejected(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	cls := model.NewClassDefinition("Dog")
	cls.IsA = "Animal"
	schema.Classes.Set("Dog", cls)

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_DanglingMixinRejected(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	cls := model.NewClassDefinition("Dog")
	cls.Mixins = []string{"Named"}
	schema.Classes.Set("Dog", cls)

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_IdentifierMustBeRequired(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("id", &model.SlotDefinition{Name: "id", Range: "string", Identifier: true})

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_OneIdentifierPerHierarchy(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("id", &model.SlotDefinition{Name: "id", Range: "string", Required: true, Identifier: true})
	schema.Slots.Set("code", &model.SlotDefinition{Name: "code", Range: "string", Required: true, Identifier: true})

	base := model.NewClassDefinition("Base")
	base.Slots = []string{"id"}
	schema.Classes.Set("Base", base)

	derived := model.NewClassDefinition("Derived")
	derived.IsA = "Base"
	derived.Slots = []string{"code"}
	schema.Classes.Set("Derived", derived)

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_BadPatternRejected(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Slots.Set("name", &model.SlotDefinition{Name: "name", Range: "string", Pattern: "["})

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_MinMaxInverted(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	lo, hi := 10.0, 5.0
	schema.Slots.Set("age", &model.SlotDefinition{Name: "age", Range: "integer", MinimumValue: &lo, MaximumValue: &hi})

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsSchemaValidationError(err))
}

func TestResolve_TypeBaseChainCycle(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Types.Set("A", &model.TypeDefinition{Name: "A", BaseType: "B"})
	schema.Types.Set("B", &model.TypeDefinition{Name: "B", BaseType: "A"})

	_, err := resolve.Resolve(schema)
	require.Error(t, err)
	assert.True(t, schemaforge.IsInheritanceCycleError(err))
}

func TestResolveTypeChain_FollowsRefinements(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	schema.Types.Set("identifier", &model.TypeDefinition{Name: "identifier", BaseType: "string", Pattern: "^[A-Z]+$"})
	schema.Types.Set("accession", &model.TypeDefinition{Name: "accession", BaseType: "identifier"})

	p, pattern := resolve.ResolveTypeChain(schema, "accession")
	assert.Equal(t, model.PrimitiveString, p)
	assert.Equal(t, "^[A-Z]+$", pattern)
}

func TestResolve_SlotDeclaredOnlyAsAttribute(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	cls := model.NewClassDefinition("Sample")
	cls.Slots = []string{"label"}
	cls.Attributes.Set("label", &model.SlotDefinition{Range: "string", Required: true})
	schema.Classes.Set("Sample", cls)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)
	rc, _ := resolved.Class("Sample")
	require.Len(t, rc.EffectiveSlots, 1)
	slot := rc.EffectiveSlots[0]
	assert.Equal(t, "label", slot.Name)
	assert.True(t, slot.Required)
	assert.True(t, slot.FromAttribute)
}

func TestResolve_AncestorAttributesInherited(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	base := model.NewClassDefinition("Base")
	base.Attributes.Set("created", &model.SlotDefinition{Range: "datetime"})
	schema.Classes.Set("Base", base)

	derived := model.NewClassDefinition("Derived")
	derived.IsA = "Base"
	schema.Classes.Set("Derived", derived)

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)
	rc, _ := resolved.Class("Derived")
	require.Len(t, rc.EffectiveSlots, 1)
	assert.Equal(t, "created", rc.EffectiveSlots[0].Name)
	assert.Equal(t, "Base", rc.EffectiveSlots[0].Owner)
}
