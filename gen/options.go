package gen

import "github.com/schemaforge/schemaforge"

// IndentStyle is either N spaces (1..8) or tabs (§4.2).
type IndentStyle struct {
	Tabs   bool
	Spaces int
}

// Spaces returns an IndentStyle of n spaces.
func Spaces(n int) IndentStyle { return IndentStyle{Spaces: n} }

// Tabs returns a tab IndentStyle.
func Tabs() IndentStyle { return IndentStyle{Tabs: true} }

// String renders one indent level.
func (s IndentStyle) String() string {
	if s.Tabs {
		return "\t"
	}
	n := s.Spaces
	if n <= 0 {
		n = 2
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

// Options is the generator-agnostic option bag (§4.2 GeneratorOptions).
// Keys passed through Custom are not validated here, and no built-in
// generator checks Custom for keys it does not recognize: table-ddl reads
// only "dialect", and every other key is ignored.
type Options struct {
	Indent        IndentStyle
	Pretty        bool
	IncludeDocs   bool
	GenerateTests bool
	Namespace     string
	PackageName   string
	DeriveSerde   bool
	ThreadSafe    bool
	Custom        map[string]any
}

// Option configures an Options value, matching the teacher's functional
// options idiom (compiler/gen/option.go: `type Option func(*Config)
// error`, eager validation, `With*` constructors).
type Option func(*Options) error

// NewOptions applies opts over sane defaults, matching spec.md §4.2's
// enumerated recognized keys.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		Indent:      Spaces(2),
		IncludeDocs: true,
		Custom:      make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithIndent sets the indentation style.
func WithIndent(style IndentStyle) Option {
	return func(o *Options) error {
		if !style.Tabs && (style.Spaces < 1 || style.Spaces > 8) {
			return schemaforge.NewConfigError("indent", style.Spaces, "must be 1..8 spaces or tabs")
		}
		o.Indent = style
		return nil
	}
}

// WithPretty toggles pretty-printing.
func WithPretty(v bool) Option {
	return func(o *Options) error { o.Pretty = v; return nil }
}

// WithIncludeDocs toggles doc-comment emission.
func WithIncludeDocs(v bool) Option {
	return func(o *Options) error { o.IncludeDocs = v; return nil }
}

// WithGenerateTests toggles test-file emission.
func WithGenerateTests(v bool) Option {
	return func(o *Options) error { o.GenerateTests = v; return nil }
}

// WithNamespace sets the target namespace (used by graph-schema and
// namespace-manager).
func WithNamespace(ns string) Option {
	return func(o *Options) error {
		if ns == "" {
			return schemaforge.NewConfigError("namespace", ns, "namespace cannot be empty")
		}
		o.Namespace = ns
		return nil
	}
}

// WithPackageName sets the target package name (used by record-struct).
func WithPackageName(pkg string) Option {
	return func(o *Options) error {
		if pkg == "" {
			return schemaforge.NewConfigError("package_name", pkg, "package name cannot be empty")
		}
		o.PackageName = pkg
		return nil
	}
}

// WithDeriveSerde toggles serialization-trait derivation (record-struct).
func WithDeriveSerde(v bool) Option {
	return func(o *Options) error { o.DeriveSerde = v; return nil }
}

// WithThreadSafe toggles generation of thread-safe accessors.
func WithThreadSafe(v bool) Option {
	return func(o *Options) error { o.ThreadSafe = v; return nil }
}

// WithCustom sets a generator-specific option key. Recognized custom keys
// are documented per-generator; only an empty key is rejected, and a
// generator ignores custom keys it does not read.
func WithCustom(key string, value any) Option {
	return func(o *Options) error {
		if key == "" {
			return schemaforge.NewConfigError("custom", key, "custom option key cannot be empty")
		}
		o.Custom[key] = value
		return nil
	}
}
