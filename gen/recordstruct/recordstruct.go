// Package recordstruct implements the record-struct generator: one Go
// struct (plus typed accessors) per class, emitted with
// github.com/dave/jennifer, grounded on compiler/gen/type.go and
// compiler/gen/type_field.go's own use of jennifer to emit per-entity Go
// types.
package recordstruct

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// Generator implements gen.Generator for the record-struct target.
type Generator struct{}

// New returns a record-struct Generator.
func New() *Generator { return &Generator{} }

func (g *Generator) Name() string             { return "record-struct" }
func (g *Generator) FileExtensions() []string { return []string{".go"} }

func (g *Generator) ValidateSchema(r *resolve.Resolved) error { return nil }

// scalarType returns the unwrapped (non-pointer, non-slice) jen.Code for a
// slot's effective range: a class pointer, an enum identifier, a
// time.Time qualified reference, or a builtin primitive.
func scalarType(r *resolve.Resolved, rng string) jen.Code {
	if _, isClass := r.Schema.Classes.Get(rng); isClass {
		return jen.Op("*").Id(resolve.CanonicalizeIdentifier(rng, resolve.PascalCase))
	}
	if _, isEnum := r.Schema.Enums.Get(rng); isEnum {
		return jen.Id(resolve.CanonicalizeIdentifier(rng, resolve.PascalCase))
	}
	if isTimeLike(rng) {
		return jen.Qual("time", "Time")
	}
	return jen.Id(primitiveGoType(rng))
}

// goType maps a slot's effective range to a Go type, recursing into
// pointers for optional scalars and slices for multivalued slots.
func goType(r *resolve.Resolved, s *resolve.EffectiveSlot) jen.Code {
	if s.Multivalued {
		return jen.Index().Add(scalarType(r, s.Range))
	}
	if !s.Required {
		_, isClass := r.Schema.Classes.Get(s.Range)
		_, isEnum := r.Schema.Enums.Get(s.Range)
		if !isClass && !isEnum {
			// Optional scalars are nillable via pointer; class references
			// are already pointers and enum zero values double as "unset".
			return jen.Op("*").Add(scalarType(r, s.Range))
		}
	}
	return scalarType(r, s.Range)
}

func isTimeLike(rng string) bool {
	switch model.Primitive(rng) {
	case model.PrimitiveDate, model.PrimitiveDatetime, model.PrimitiveTime:
		return true
	default:
		return false
	}
}

func primitiveGoType(rng string) string {
	switch model.Primitive(rng) {
	case model.PrimitiveString, model.PrimitiveURI, model.PrimitiveURIorCURIE,
		model.PrimitiveCURIE, model.PrimitiveNCName:
		return "string"
	case model.PrimitiveInteger:
		return "int64"
	case model.PrimitiveFloat:
		return "float32"
	case model.PrimitiveDouble, model.PrimitiveDecimal:
		return "float64"
	case model.PrimitiveBoolean:
		return "bool"
	default:
		return "string"
	}
}

// Generate emits one Go file per class, declaring a struct named after its
// PascalCase identifier in a file named after its snake_case identifier,
// in schema.Classes insertion order (§8 "Ordering determinism").
func (g *Generator) Generate(r *resolve.Resolved, opts *gen.Options) ([]gen.GeneratedFile, error) {
	if opts == nil {
		var err error
		opts, err = gen.NewOptions()
		if err != nil {
			return nil, err
		}
	}
	pkg := opts.PackageName
	if pkg == "" {
		pkg = "model"
	}

	var files []gen.GeneratedFile
	for _, name := range r.ClassOrder {
		rc := r.Classes[name]
		typeName := resolve.CanonicalizeIdentifier(name, resolve.PascalCase)

		f := jen.NewFile(pkg)
		if opts.IncludeDocs && rc.Description != "" {
			f.Comment(fmt.Sprintf("%s %s", typeName, rc.Description))
		}

		fields := make([]jen.Code, 0, len(rc.EffectiveSlots))
		for _, s := range rc.EffectiveSlots {
			fieldName := resolve.CanonicalizeIdentifier(s.Name, resolve.PascalCase)
			tag := map[string]string{"json": s.Name}
			if opts.DeriveSerde {
				tag["yaml"] = s.Name
			}
			fields = append(fields, jen.Id(fieldName).Add(goType(r, s)).Tag(tag))
		}

		f.Type().Id(typeName).Struct(fields...)

		for _, s := range rc.EffectiveSlots {
			fieldName := resolve.CanonicalizeIdentifier(s.Name, resolve.PascalCase)
			f.Comment(fmt.Sprintf("Get%s returns the %s field.", fieldName, s.Name))
			f.Func().Params(jen.Id("x").Op("*").Id(typeName)).Id("Get"+fieldName).Params().Add(goType(r, s)).Block(
				jen.Return(jen.Id("x").Dot(fieldName)),
			)
		}

		files = append(files, gen.GeneratedFile{
			Filename: resolve.CanonicalizeIdentifier(name, resolve.SnakeCase) + ".go",
			Content:  []byte(fmt.Sprintf("%#v", f)),
		})
	}
	return files, nil
}
