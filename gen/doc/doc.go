// Package doc implements the documentation generator: a Markdown
// document describing every class, slot, and enum in a resolved schema.
// No teacher analogue emits documentation directly; this generator is
// grounded on the doc-comment density/placement conventions visible
// throughout compiler/gen (one doc block per declaration, invariants
// stated plainly) applied to Markdown instead of Go doc comments.
package doc

import (
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/resolve"
)

// Generator implements gen.Generator for the documentation target.
type Generator struct{}

// New returns a documentation Generator.
func New() *Generator { return &Generator{} }

func (g *Generator) Name() string             { return "doc" }
func (g *Generator) FileExtensions() []string { return []string{".md"} }

func (g *Generator) ValidateSchema(r *resolve.Resolved) error { return nil }

// Generate emits a single Markdown file with one section per class, in
// schema.Classes order, followed by a section per enum.
func (g *Generator) Generate(r *resolve.Resolved, opts *gen.Options) ([]gen.GeneratedFile, error) {
	if opts == nil {
		var err error
		opts, err = gen.NewOptions()
		if err != nil {
			return nil, err
		}
	}

	var sb strings.Builder
	title := r.Schema.Name
	if title == "" {
		title = "Schema"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if r.Schema.Description != "" {
		sb.WriteString(r.Schema.Description)
		sb.WriteString("\n\n")
	}

	for _, className := range r.ClassOrder {
		rc := r.Classes[className]
		writeClass(&sb, className, rc)
	}

	for _, enumName := range r.Schema.Enums.Keys() {
		enum, _ := r.Schema.Enums.Get(enumName)
		fmt.Fprintf(&sb, "## %s (enum)\n\n", enumName)
		if enum.Description != "" {
			sb.WriteString(enum.Description)
			sb.WriteString("\n\n")
		}
		for _, pv := range enum.PermissibleValues {
			fmt.Fprintf(&sb, "- `%s`", pv.Text)
			if pv.Description != "" {
				fmt.Fprintf(&sb, " — %s", pv.Description)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	return []gen.GeneratedFile{{
		Filename: "schema.md",
		Content:  []byte(sb.String()),
	}}, nil
}

func writeClass(sb *strings.Builder, className string, rc *resolve.ResolvedClass) {
	fmt.Fprintf(sb, "## %s\n\n", className)
	if rc.Description != "" {
		sb.WriteString(rc.Description)
		sb.WriteString("\n\n")
	}
	if rc.IsA != "" {
		fmt.Fprintf(sb, "Inherits from [%s](#%s).\n\n", rc.IsA, strings.ToLower(rc.IsA))
	}
	if len(rc.Mixins) > 0 {
		fmt.Fprintf(sb, "Mixes in: %s.\n\n", strings.Join(rc.Mixins, ", "))
	}
	if rc.Abstract {
		sb.WriteString("_Abstract class; not directly instantiable._\n\n")
	}

	if len(rc.EffectiveSlots) > 0 {
		sb.WriteString("| Slot | Range | Required | Multivalued | Description |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, s := range rc.EffectiveSlots {
			fmt.Fprintf(sb, "| %s | %s | %s | %s | %s |\n",
				s.Name, s.Range, yesNo(s.Required), yesNo(s.Multivalued), firstLine(s.Description))
		}
		sb.WriteByte('\n')
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
