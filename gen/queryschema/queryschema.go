// Package queryschema implements the query-schema generator: a GraphQL
// SDL document (object types, enums, and a root Query type) built with
// github.com/vektah/gqlparser/v2/ast and rendered through its formatter,
// grounded on the teacher's contrib/graphql extension (its gqlgen/SDL
// pipeline) adapted from a hook-based ORM code generator into a
// standalone schema-text generator.
package queryschema

import (
	"bytes"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// Generator implements gen.Generator for the query-schema target.
type Generator struct{}

// New returns a query-schema Generator.
func New() *Generator { return &Generator{} }

func (g *Generator) Name() string             { return "query-schema" }
func (g *Generator) FileExtensions() []string { return []string{".graphql"} }

func (g *Generator) ValidateSchema(r *resolve.Resolved) error { return nil }

// Generate builds one ast.SchemaDocument covering every class (as a
// GraphQL object type), every enum (as a GraphQL enum type), and a root
// Query type with one list field per concrete class, then renders and
// round-trip-validates it. The Query type is left out when there is no
// concrete class to give it a field.
func (g *Generator) Generate(r *resolve.Resolved, opts *gen.Options) ([]gen.GeneratedFile, error) {
	if opts == nil {
		var err error
		opts, err = gen.NewOptions()
		if err != nil {
			return nil, err
		}
	}

	doc := &ast.SchemaDocument{}

	for _, enumName := range r.Schema.Enums.Keys() {
		enum, _ := r.Schema.Enums.Get(enumName)
		doc.Definitions = append(doc.Definitions, enumDefinition(enumName, enum))
	}

	for _, className := range r.ClassOrder {
		rc := r.Classes[className]
		if rc.Abstract {
			continue
		}
		doc.Definitions = append(doc.Definitions, objectDefinition(className, rc, opts))
	}

	if query := queryDefinition(r); len(query.Fields) > 0 {
		doc.Definitions = append(doc.Definitions, query)
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	content := buf.String()

	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: content}); err != nil {
		return nil, schemaforge.NewGeneratorError(g.Name(), "generated schema failed validation", err)
	}

	return []gen.GeneratedFile{{
		Filename: "schema.graphql",
		Content:  []byte(content),
	}}, nil
}

func enumDefinition(name string, e *model.EnumDefinition) *ast.Definition {
	def := &ast.Definition{
		Kind:        ast.Enum,
		Name:        resolve.CanonicalizeIdentifier(name, resolve.PascalCase),
		Description: e.Description,
	}
	for _, pv := range e.PermissibleValues {
		def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
			Name:        enumValueName(pv.Text),
			Description: pv.Description,
		})
	}
	return def
}

func enumValueName(text string) string {
	return resolve.CanonicalizeIdentifier(text, resolve.SnakeCase)
}

func objectDefinition(className string, rc *resolve.ResolvedClass, opts *gen.Options) *ast.Definition {
	def := &ast.Definition{
		Kind:        ast.Object,
		Name:        resolve.CanonicalizeIdentifier(className, resolve.PascalCase),
		Description: rc.Description,
	}
	def.Fields = append(def.Fields, &ast.FieldDefinition{
		Name: "id",
		Type: ast.NonNullNamedType("ID", nil),
	})
	for _, s := range rc.EffectiveSlots {
		field := &ast.FieldDefinition{
			Name:        resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase),
			Description: s.Description,
			Type:        graphqlType(s),
		}
		def.Fields = append(def.Fields, field)
	}
	return def
}

// graphqlType maps an effective slot's range to a GraphQL type
// reference, wrapping in NonNull/list per the slot's required and
// multivalued flags.
func graphqlType(s *resolve.EffectiveSlot) *ast.Type {
	var named string
	switch model.Primitive(s.Range) {
	case model.PrimitiveString, model.PrimitiveURI, model.PrimitiveURIorCURIE,
		model.PrimitiveCURIE, model.PrimitiveNCName:
		named = "String"
	case model.PrimitiveInteger:
		named = "Int"
	case model.PrimitiveFloat, model.PrimitiveDouble, model.PrimitiveDecimal:
		named = "Float"
	case model.PrimitiveBoolean:
		named = "Boolean"
	case model.PrimitiveDate, model.PrimitiveDatetime, model.PrimitiveTime:
		named = "String"
	default:
		named = resolve.CanonicalizeIdentifier(s.Range, resolve.PascalCase)
	}

	// Multivalued slots are rendered as a non-null list of non-null
	// elements: absence is represented by an empty list, not null, so
	// the required flag only governs scalar (non-list) slots.
	if s.Multivalued {
		return ast.NonNullListType(ast.NonNullNamedType(named, nil), nil)
	}
	if s.Required {
		return ast.NonNullNamedType(named, nil)
	}
	return ast.NamedType(named, nil)
}

// queryDefinition builds the root Query type: one list field per
// concrete class, named after its pluralized, snake_case identifier.
func queryDefinition(r *resolve.Resolved) *ast.Definition {
	def := &ast.Definition{Kind: ast.Object, Name: "Query"}
	for _, className := range r.ClassOrder {
		rc := r.Classes[className]
		if rc.Abstract {
			continue
		}
		typeName := resolve.CanonicalizeIdentifier(className, resolve.PascalCase)
		fieldName := resolve.Pluralize(resolve.CanonicalizeIdentifier(className, resolve.SnakeCase))
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: fieldName,
			Type: ast.NonNullListType(ast.NonNullNamedType(typeName, nil), nil),
		})
	}
	return def
}
