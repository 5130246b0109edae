package ioformat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/ioformat"
	"github.com/schemaforge/schemaforge/model"
)

func TestYAMLLoaderDumperRoundTrip(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "1", Data: map[string]any{"name": "Ada"}},
	}
	var dumper ioformat.YAMLDumper
	bytes, err := dumper.DumpBytes(instances, schema, nil)
	require.NoError(t, err)

	var loader ioformat.YAMLLoader
	loaded, err := loader.LoadBytes(bytes, schema, nil)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Person", loaded[0].ClassName)
	assert.Equal(t, "Ada", loaded[0].Data["name"])
}

func TestMsgpackLoaderDumperRoundTrip(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	instances := []ioformat.DataInstance{
		{ClassName: "Person", ID: "1", Data: map[string]any{"name": "Ada"}},
	}
	var dumper ioformat.MsgpackDumper
	bytes, err := dumper.DumpBytes(instances, schema, nil)
	require.NoError(t, err)

	var loader ioformat.MsgpackLoader
	loaded, err := loader.LoadBytes(bytes, schema, nil)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Person", loaded[0].ClassName)
}

func TestDeterministicSkolemization(t *testing.T) {
	policy := ioformat.DeterministicPolicy{Base: "http://ex/", Prefix: "sk"}
	assert.Equal(t, "http://ex//sk_b1", policy.Skolemize("b1"))
}

func TestLoadTriplesCollapsesRepeatedPredicates(t *testing.T) {
	triples := []ioformat.Triple{
		{Subject: ioformat.Term{Value: "http://ex/p1", Kind: ioformat.TermIRI}, Predicate: ioformat.Term{Value: "rdf:type"}, Object: ioformat.Term{Value: "http://ex/Person"}},
		{Subject: ioformat.Term{Value: "http://ex/p1", Kind: ioformat.TermIRI}, Predicate: ioformat.Term{Value: "http://ex/tag"}, Object: ioformat.Term{Value: "a", Kind: ioformat.TermLiteral}},
		{Subject: ioformat.Term{Value: "http://ex/p1", Kind: ioformat.TermIRI}, Predicate: ioformat.Term{Value: "http://ex/tag"}, Object: ioformat.Term{Value: "b", Kind: ioformat.TermLiteral}},
	}
	out := ioformat.LoadTriples(triples, ioformat.GraphTripleOptions{})
	require.Len(t, out, 1)
	assert.Equal(t, "Person", out[0].ClassName)
	assert.Equal(t, []any{"a", "b"}, out[0].Data["tag"])
}

func TestStreamDrain(t *testing.T) {
	schema := model.NewSchema("https://example.org/s", "s")
	var dumper ioformat.YAMLDumper
	bytes, err := dumper.DumpBytes([]ioformat.DataInstance{
		{ClassName: "Person", Data: map[string]any{"name": "Ada"}},
	}, schema, nil)
	require.NoError(t, err)

	var loader ioformat.YAMLLoader
	out, errc := ioformat.Stream(context.Background(), loader, bytes, schema, nil, 1)
	instances, err := ioformat.Drain(out, errc)
	require.NoError(t, err)
	require.Len(t, instances, 1)
}
