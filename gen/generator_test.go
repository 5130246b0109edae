package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/resolve"
)

type stubGenerator struct{ name string }

func (s stubGenerator) Name() string            { return s.name }
func (s stubGenerator) FileExtensions() []string { return []string{".txt"} }
func (s stubGenerator) ValidateSchema(*resolve.Resolved) error { return nil }
func (s stubGenerator) Generate(*resolve.Resolved, *gen.Options) ([]gen.GeneratedFile, error) {
	return nil, nil
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := gen.NewRegistry()
	_, err := reg.Get("nope")
	require.Error(t, err)
	assert.True(t, schemaforge.IsNotFoundErr(err))
}

func TestRegistry_RegisterAndOrder(t *testing.T) {
	reg := gen.NewRegistry()
	reg.Register(stubGenerator{name: "b"})
	reg.Register(stubGenerator{name: "a"})
	assert.Equal(t, []string{"b", "a"}, reg.Names())

	g, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", g.Name())
}

func TestOptions_IndentValidation(t *testing.T) {
	_, err := gen.NewOptions(gen.WithIndent(gen.Spaces(0)))
	require.Error(t, err)
	assert.True(t, schemaforge.IsConfigError(err))

	opts, err := gen.NewOptions(gen.WithIndent(gen.Tabs()))
	require.NoError(t, err)
	assert.Equal(t, "\t", opts.Indent.String())
}

func TestFormatDocComment(t *testing.T) {
	assert.Nil(t, gen.FormatDocComment("//", "  "))
	assert.Equal(t, []string{"// hello", "// world"}, gen.FormatDocComment("//", "hello\nworld"))
}
