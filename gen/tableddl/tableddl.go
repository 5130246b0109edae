// Package tableddl implements the table-DDL generator: one relational
// table per class (plus child/join tables for multivalued slots), built
// as an ariga.io/atlas/sql/schema intermediate representation and
// rendered to dialect SQL, grounded on dialect/sql/schema/validate.go's
// Table/Column/Index/ForeignKey shapes and the teacher's go.mod atlas
// dependency.
package tableddl

import (
	"fmt"
	"strings"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/resolve"
)

// Dialect selects the rendered SQL flavor (§4.2 Custom option "dialect").
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Generator implements gen.Generator for the table-ddl target.
type Generator struct{}

// New returns a table-ddl Generator.
func New() *Generator { return &Generator{} }

func (g *Generator) Name() string             { return "table-ddl" }
func (g *Generator) FileExtensions() []string { return []string{".sql"} }

// ValidateSchema rejects classes with a multivalued identifier, which
// cannot be represented as a relational primary key.
func (g *Generator) ValidateSchema(r *resolve.Resolved) error {
	for _, name := range r.ClassOrder {
		rc := r.Classes[name]
		for _, s := range rc.EffectiveSlots {
			if s.Identifier && s.Multivalued {
				return schemaforge.NewSchemaValidationError(name,
					fmt.Sprintf("slot %q: identifier slots cannot be multivalued", s.Name))
			}
		}
	}
	return nil
}

func dialectOf(opts *gen.Options) Dialect {
	if opts == nil {
		return SQLite
	}
	if v, ok := opts.Custom["dialect"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return Dialect(s)
		}
	}
	return SQLite
}

// Generate builds an atlas schema.Schema IR from the resolved model —
// one table per concrete class, child tables for multivalued primitive
// slots, join tables for multivalued class-valued slots — then renders
// it to a single DDL file in schema.Classes order.
func (g *Generator) Generate(r *resolve.Resolved, opts *gen.Options) ([]gen.GeneratedFile, error) {
	if opts == nil {
		var err error
		opts, err = gen.NewOptions()
		if err != nil {
			return nil, err
		}
	}
	dialect := dialectOf(opts)

	name := r.Schema.Name
	if name == "" {
		name = "schema"
	}
	sch := atlas.New(name)

	tablesByClass := make(map[string]*atlas.Table)
	var order []string

	for _, className := range r.ClassOrder {
		rc := r.Classes[className]
		if rc.Abstract || rc.Mixin {
			continue
		}
		t := newTable(tableName(className))
		pk := primaryKeyColumn(rc)
		t.AddColumns(pk)

		for _, s := range rc.EffectiveSlots {
			if s.Identifier {
				continue
			}
			if s.Multivalued {
				continue // handled in a second pass once every table exists.
			}
			col := scalarColumn(r, s)
			t.AddColumns(col)
		}
		t.SetPrimaryKey(atlas.NewIndex(tableName(className) + "_pk").AddColumns(pk))
		addUniqueIndexes(t, rc.ClassDefinition)

		sch.AddTables(t)
		tablesByClass[className] = t
		order = append(order, className)
	}

	// Second pass: foreign keys and multivalued child/join tables, once
	// every class's table (and primary key) is known.
	for _, className := range order {
		rc := r.Classes[className]
		t := tablesByClass[className]
		pk := t.PrimaryKey.Parts[0].C

		for _, s := range rc.EffectiveSlots {
			if s.Identifier {
				continue
			}
			target, isClassRange := tablesByClass[s.Range]

			switch {
			case !s.Multivalued && isClassRange:
				addForeignKeyColumn(t, s, target)
			case s.Multivalued && isClassRange:
				sch.AddTables(joinTable(t, pk, s, target))
			case s.Multivalued && !isClassRange:
				sch.AddTables(valueTable(t, pk, s, r))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("-- generated for schema %q (dialect: %s)\n\n", name, dialect))
	for _, t := range sch.Tables {
		renderTable(&sb, t, dialect)
		sb.WriteByte('\n')
	}

	return []gen.GeneratedFile{{
		Filename: resolve.CanonicalizeIdentifier(name, resolve.SnakeCase) + ".sql",
		Content:  []byte(sb.String()),
	}}, nil
}

func tableName(className string) string {
	return resolve.Pluralize(resolve.CanonicalizeIdentifier(className, resolve.SnakeCase))
}

func newTable(name string) *atlas.Table {
	return atlas.NewTable(name)
}

// primaryKeyColumn returns the class's declared identifier slot as a
// column, or a synthetic bigint "id" column when the class
// declares none (§4.1 allows identifier-less classes).
func primaryKeyColumn(rc *resolve.ResolvedClass) *atlas.Column {
	for _, s := range rc.EffectiveSlots {
		if s.Identifier {
			return scalarColumn(nil, s)
		}
	}
	return atlas.NewIntColumn("id", "bigint")
}

func scalarColumn(r *resolve.Resolved, s *resolve.EffectiveSlot) *atlas.Column {
	colName := resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase)
	var col *atlas.Column
	switch model.Primitive(s.Range) {
	case model.PrimitiveInteger:
		col = atlas.NewIntColumn(colName, "bigint")
	case model.PrimitiveFloat:
		col = atlas.NewFloatColumn(colName, "float")
	case model.PrimitiveDouble, model.PrimitiveDecimal:
		col = atlas.NewFloatColumn(colName, "double")
	case model.PrimitiveBoolean:
		col = atlas.NewBoolColumn(colName, "boolean")
	case model.PrimitiveDate, model.PrimitiveDatetime, model.PrimitiveTime:
		col = atlas.NewTimeColumn(colName, "timestamp")
	default:
		if r != nil {
			if _, isEnum := r.Schema.Enums.Get(s.Range); isEnum {
				col = atlas.NewStringColumn(colName, "varchar")
				break
			}
		}
		col = atlas.NewStringColumn(colName, "varchar")
	}
	col.SetNull(!s.Required && !s.Identifier)
	return col
}

func addUniqueIndexes(t *atlas.Table, cls *model.ClassDefinition) {
	if cls.UniqueKeys == nil {
		return
	}
	for _, keyName := range cls.UniqueKeys.Keys() {
		slots, _ := cls.UniqueKeys.Get(keyName)
		cols := make([]*atlas.Column, 0, len(slots))
		for _, slot := range slots {
			colName := resolve.CanonicalizeIdentifier(slot, resolve.SnakeCase)
			for _, c := range t.Columns {
				if c.Name == colName {
					cols = append(cols, c)
				}
			}
		}
		if len(cols) == 0 {
			continue
		}
		idx := atlas.NewIndex(t.Name + "_" + resolve.CanonicalizeIdentifier(keyName, resolve.SnakeCase) + "_uq").
			SetUnique(true).
			AddColumns(cols...)
		t.AddIndexes(idx)
	}
}

// addForeignKeyColumn adds a "<slot>_id"-named column on t referencing
// target's primary key, for a single-valued class-ranged slot.
func addForeignKeyColumn(t *atlas.Table, s *resolve.EffectiveSlot, target *atlas.Table) {
	colName := resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase) + "_id"
	refCol := target.PrimaryKey.Parts[0].C
	fkCol := cloneColumnType(colName, refCol)
	fkCol.SetNull(!s.Required)
	t.AddColumns(fkCol)

	fk := atlas.NewForeignKey(t.Name + "_" + colName + "_fk").
		SetTable(t).
		AddColumns(fkCol).
		SetRefTable(target).
		AddRefColumns(refCol).
		SetOnDelete(atlas.SetNull)
	t.AddForeignKeys(fk)
}

// joinTable builds a many-to-many association table for a multivalued
// class-ranged slot.
func joinTable(owner *atlas.Table, ownerPK *atlas.Column, s *resolve.EffectiveSlot, target *atlas.Table) *atlas.Table {
	name := owner.Name + "_" + resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase)
	t := newTable(name)

	leftCol := cloneColumnType(resolve.Singularize(owner.Name)+"_id", ownerPK)
	leftCol.SetNull(false)
	rightCol := cloneColumnType(resolve.Singularize(resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase))+"_id", target.PrimaryKey.Parts[0].C)
	rightCol.SetNull(false)
	t.AddColumns(leftCol, rightCol)
	t.SetPrimaryKey(atlas.NewIndex(name + "_pk").AddColumns(leftCol, rightCol))

	t.AddForeignKeys(
		atlas.NewForeignKey(name+"_owner_fk").SetTable(t).AddColumns(leftCol).
			SetRefTable(owner).AddRefColumns(ownerPK).SetOnDelete(atlas.Cascade),
		atlas.NewForeignKey(name+"_target_fk").SetTable(t).AddColumns(rightCol).
			SetRefTable(target).AddRefColumns(target.PrimaryKey.Parts[0].C).SetOnDelete(atlas.Cascade),
	)
	return t
}

// valueTable builds a normalized child table for a multivalued primitive
// slot: one row per value, keyed to the owning table's primary key.
func valueTable(owner *atlas.Table, ownerPK *atlas.Column, s *resolve.EffectiveSlot, r *resolve.Resolved) *atlas.Table {
	name := owner.Name + "_" + resolve.CanonicalizeIdentifier(s.Name, resolve.SnakeCase)
	t := newTable(name)

	ownerCol := cloneColumnType(resolve.Singularize(owner.Name)+"_id", ownerPK)
	ownerCol.SetNull(false)
	valueCol := scalarColumn(r, &resolve.EffectiveSlot{
		SlotDefinition: &model.SlotDefinition{Name: "value", Range: s.Range, Required: true},
	})
	t.AddColumns(ownerCol, valueCol)
	t.AddForeignKeys(
		atlas.NewForeignKey(name + "_owner_fk").SetTable(t).AddColumns(ownerCol).
			SetRefTable(owner).AddRefColumns(ownerPK).SetOnDelete(atlas.Cascade),
	)
	return t
}

func cloneColumnType(name string, ref *atlas.Column) *atlas.Column {
	col := &atlas.Column{Name: name, Type: ref.Type}
	return col
}

func renderTable(sb *strings.Builder, t *atlas.Table, dialect Dialect) {
	fmt.Fprintf(sb, "CREATE TABLE %s (\n", t.Name)
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		lines = append(lines, fmt.Sprintf("  %s %s%s", c.Name, sqlType(c, dialect), nullClause(c)))
	}
	if t.PrimaryKey != nil {
		cols := make([]string, len(t.PrimaryKey.Parts))
		for i, p := range t.PrimaryKey.Parts {
			cols[i] = p.C.Name
		}
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(cols, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			fk.Symbol, colNames(fk.Columns), fk.RefTable.Name, colNames(fk.RefColumns), string(fk.OnDelete)))
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n")
	for _, idx := range t.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		fmt.Fprintf(sb, "CREATE %sINDEX %s ON %s (%s);\n", unique, idx.Name, t.Name, colNames(indexColumns(idx)))
	}
}

func colNames(cols []*atlas.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func indexColumns(idx *atlas.Index) []*atlas.Column {
	cols := make([]*atlas.Column, len(idx.Parts))
	for i, p := range idx.Parts {
		cols[i] = p.C
	}
	return cols
}

func nullClause(c *atlas.Column) string {
	if c.Type != nil && c.Type.Null {
		return ""
	}
	return " NOT NULL"
}

// sqlType renders a column's atlas type as dialect SQL. Atlas's own
// dialect packages (mysql/postgres) format types against a live driver
// connection; this generator has none, so it carries a small
// self-contained dialect table instead, keyed off the same atlas.Type
// values built in scalarColumn.
func sqlType(c *atlas.Column, dialect Dialect) string {
	if c.Type == nil {
		return "text"
	}
	switch t := c.Type.Type.(type) {
	case *atlas.IntegerType:
		if dialect == SQLite {
			return "INTEGER"
		}
		return strings.ToUpper(t.T)
	case *atlas.FloatType:
		return strings.ToUpper(t.T)
	case *atlas.BoolType:
		if dialect == MySQL {
			return "TINYINT(1)"
		}
		return "BOOLEAN"
	case *atlas.TimeType:
		return "TIMESTAMP"
	case *atlas.StringType:
		if dialect == SQLite {
			return "TEXT"
		}
		return "VARCHAR(255)"
	default:
		return "TEXT"
	}
}
