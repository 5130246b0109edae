package nsmanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/gen/nsmanager"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

func TestGenerate_ContextWithVocabAndTerms(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "demo")
	schema.DefaultPrefix = "ex"
	schema.Prefixes.Set("ex", model.Prefix{PrefixReference: "https://example.org/"})
	schema.Prefixes.Set("schema", model.Prefix{PrefixReference: "https://schema.org/"})

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	files, err := nsmanager.New().Generate(resolved, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "context.jsonld", files[0].Filename)

	out := string(files[0].Content)
	assert.Contains(t, out, `"@vocab": "https://example.org/"`)
	assert.Contains(t, out, `"schema": "https://schema.org/"`)
}

func TestGenerate_NoDefaultPrefix(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "demo")
	schema.Prefixes.Set("ex", model.Prefix{PrefixReference: "https://example.org/"})

	resolved, err := resolve.Resolve(schema)
	require.NoError(t, err)

	files, err := nsmanager.New().Generate(resolved, nil)
	require.NoError(t, err)
	out := string(files[0].Content)
	assert.NotContains(t, out, "@vocab")
	assert.Contains(t, out, `"ex": "https://example.org/"`)
}
