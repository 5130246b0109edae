package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemaforge/schemaforge/gen/registry"
)

func TestDefault_RegistersAllSixGenerators(t *testing.T) {
	reg := registry.Default()
	names := reg.Names()
	assert.ElementsMatch(t, []string{
		"graph-schema", "record-struct", "table-ddl",
		"query-schema", "doc", "namespace-manager",
	}, names)
}
