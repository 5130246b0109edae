package schemaforge_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemaforge/schemaforge"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := schemaforge.NewNotFoundError("generator", "foo")
		assert.Equal(t, `schemaforge: generator not found: "foo"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := schemaforge.NewNotFoundError("version", "v2")
		assert.True(t, errors.Is(err, schemaforge.ErrNotFound))
	})

	t.Run("IsNotFoundErr", func(t *testing.T) {
		err := schemaforge.NewNotFoundError("file", "schema.yaml")
		assert.True(t, schemaforge.IsNotFoundErr(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, schemaforge.IsNotFoundErr(wrapped))

		assert.True(t, schemaforge.IsNotFoundErr(schemaforge.ErrNotFound))
		assert.False(t, schemaforge.IsNotFoundErr(errors.New("other error")))
		assert.False(t, schemaforge.IsNotFoundErr(nil))
	})
}

func TestGeneratorNotFoundError(t *testing.T) {
	err := schemaforge.NewGeneratorNotFoundError("unknown-target")
	assert.True(t, schemaforge.IsNotFoundErr(err))
	assert.Contains(t, err.Error(), "unknown-target")
}

func TestInheritanceCycleError(t *testing.T) {
	err := schemaforge.NewInheritanceCycleError("Animal", []string{"Animal", "Pet", "Animal"})
	assert.True(t, schemaforge.IsInheritanceCycleError(err))
	assert.Contains(t, err.Error(), "Animal -> Pet -> Animal")
}

func TestUnknownPrefixError(t *testing.T) {
	err := schemaforge.NewUnknownPrefixError("xyz", "xyz:Thing")
	assert.True(t, schemaforge.IsUnknownPrefixError(err))
	assert.Contains(t, err.Error(), "xyz:Thing")
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.Nil(t, schemaforge.NewAggregateError())
		assert.Nil(t, schemaforge.NewAggregateError(nil, nil))
	})

	t.Run("SingleError", func(t *testing.T) {
		base := errors.New("single")
		got := schemaforge.NewAggregateError(base, nil)
		assert.Equal(t, base, got)
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		e1 := errors.New("first")
		e2 := errors.New("second")
		got := schemaforge.NewAggregateError(e1, e2)
		assert.Contains(t, got.Error(), "first")
		assert.Contains(t, got.Error(), "second")
		var agg *schemaforge.AggregateError
		assert.True(t, errors.As(got, &agg))
		assert.Len(t, agg.Errors, 2)
	})
}

func TestGeneratorError(t *testing.T) {
	inner := errors.New("boom")
	err := schemaforge.NewGeneratorError("graph-schema", "formatting failed", inner)
	assert.True(t, schemaforge.IsGeneratorError(err))
	assert.ErrorIs(t, err, inner)
}

func TestConfigError(t *testing.T) {
	err := schemaforge.NewConfigError("indent", 0, "must be 1..8 spaces or tabs")
	assert.True(t, schemaforge.IsConfigError(err))
	assert.Contains(t, err.Error(), "indent")
}
