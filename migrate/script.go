package migrate

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/gen"
)

// GenerateScript emits a standalone Go source file that documents plan as
// a sequence of ordered, named steps — one unexported function per step
// (named "step" plus the step ID's identifier form, e.g. stepStep1) plus an
// exported Run function that calls them in the plan's topological order.
// Grounded on compiler/gen/sql/versioned_migration.go's use of jennifer
// to emit a migration-runner source file from a list of migrations,
// adapted here to emit one from a schema MigrationStep list rather than
// SQL files (§4.5 "generate-script", for the go target language).
func GenerateScript(plan *Plan, packageName string) (*gen.GeneratedFile, error) {
	ordered, err := TopoSort(plan.Steps)
	if err != nil {
		return nil, err
	}

	f := jen.NewFile(packageName)
	f.HeaderComment("Code generated by migrate.GenerateScript. DO NOT EDIT.")
	f.ImportName("context", "context")

	var stepFuncNames []string
	for _, step := range ordered {
		fn := "step" + jenIdentifier(step.ID)
		stepFuncNames = append(stepFuncNames, fn)
		f.Comment(fmt.Sprintf("%s runs migration step %q (%s).", fn, step.ID, step.Kind))
		f.Func().Id(fn).Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(
			jen.Comment(stepComment(step)),
			jen.Return(jen.Nil()),
		)
	}

	f.Comment("Run executes every step of the generated plan in order.")
	body := make([]jen.Code, 0, len(stepFuncNames)+1)
	for _, fn := range stepFuncNames {
		body = append(body,
			jen.If(jen.Err().Op(":=").Id(fn).Call(jen.Id("ctx")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
		)
	}
	body = append(body, jen.Return(jen.Nil()))
	f.Func().Id("Run").Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(body...)

	rendered := fmt.Sprintf("%#v", f)
	return &gen.GeneratedFile{
		Filename: "migration.go",
		Content:  []byte(rendered),
		Metadata: map[string]string{"step_count": fmt.Sprintf("%d", len(ordered))},
	}, nil
}

func stepComment(step *MigrationStep) string {
	if step.Change == nil {
		return "validates the migrated data against the target schema"
	}
	return fmt.Sprintf("%s: %s", step.Change.Kind, step.Change.Detail)
}

// jenIdentifier turns a step ID like "step-3" into an exportable Go
// identifier suffix "Step3".
func jenIdentifier(id string) string {
	out := make([]rune, 0, len(id))
	upperNext := true
	for _, r := range id {
		switch {
		case r == '-' || r == '_':
			upperNext = true
		case upperNext:
			out = append(out, toUpperRune(r))
			upperNext = false
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
