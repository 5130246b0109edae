package validate

import "github.com/schemaforge/schemaforge"

// CustomValidator is a user-supplied hook invoked for a present field whose
// path matches the one it was registered under, after the built-in rules
// have run for that field (whether or not they passed), matching §4.4
// ValidationOptions' `custom_validators`. Returning failed=true fails the
// field with IssueKind RuleViolation and message as the issue text.
type CustomValidator func(path string, value any) (message string, failed bool)

// ReferenceChecker resolves a by-identifier reference held by a
// non-inlined class-ranged slot. Returning false emits a
// ReferentialIntegrityViolation for the referring field.
type ReferenceChecker func(className, id string) bool

// Options configures one Validate call (§4.4 ValidationOptions).
type Options struct {
	FailFast                  bool
	Parallel                  bool
	AllowAdditionalProperties bool
	MaxDepth                  int
	CheckPermissibles         bool
	UseCache                  bool
	FailOnWarning             bool
	CustomValidators          map[string]CustomValidator
	ReferenceChecker          ReferenceChecker
}

// Option configures an Options value, matching the functional-options idiom
// used by gen.Options.
type Option func(*Options) error

// NewOptions applies opts over sane defaults.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		MaxDepth:          32,
		CheckPermissibles: true,
		CustomValidators:  make(map[string]CustomValidator),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithFailFast toggles short-circuiting on the first scalar-rule failure
// within a field (§4.4 step 3: "short-circuit on first failure only when
// fail_fast").
func WithFailFast(v bool) Option {
	return func(o *Options) error { o.FailFast = v; return nil }
}

// WithParallel toggles per-field worker dispatch (§4.4/§5).
func WithParallel(v bool) Option {
	return func(o *Options) error { o.Parallel = v; return nil }
}

// WithAllowAdditionalProperties toggles whether instance fields absent from
// the effective slot list are flagged as UnknownField.
func WithAllowAdditionalProperties(v bool) Option {
	return func(o *Options) error { o.AllowAdditionalProperties = v; return nil }
}

// WithMaxDepth sets the deepest permitted class-valued recursion (§8
// "Deepest permitted recursion equals max_depth").
func WithMaxDepth(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return schemaforge.NewConfigError("max_depth", n, "must be >= 1")
		}
		o.MaxDepth = n
		return nil
	}
}

// WithCheckPermissibles toggles enum/permissible-value membership checks.
func WithCheckPermissibles(v bool) Option {
	return func(o *Options) error { o.CheckPermissibles = v; return nil }
}

// WithUseCache toggles the engine's effective-slot cache. The cache lives
// for a single Validate call and is not shared with later calls (§9
// "analyzer caches ... must not be held across any I/O").
func WithUseCache(v bool) Option {
	return func(o *Options) error { o.UseCache = v; return nil }
}

// WithFailOnWarning promotes warning-severity issues to failures (§7
// "Warnings become errors only when strict=true").
func WithFailOnWarning(v bool) Option {
	return func(o *Options) error { o.FailOnWarning = v; return nil }
}

// WithReferenceChecker installs the resolver for by-identifier references
// held by non-inlined class-ranged slots. Without one, references are
// accepted unchecked.
func WithReferenceChecker(fn ReferenceChecker) Option {
	return func(o *Options) error {
		if fn == nil {
			return schemaforge.NewConfigError("reference_checker", nil, "checker function must be set")
		}
		o.ReferenceChecker = fn
		return nil
	}
}

// WithCustomValidator registers a named custom validator for the given
// field path, in the same dotted form as Issue.Path, rooted at the
// validated class (e.g. "Person.address.city").
func WithCustomValidator(path string, fn CustomValidator) Option {
	return func(o *Options) error {
		if path == "" || fn == nil {
			return schemaforge.NewConfigError("custom_validators", path, "path and function must be set")
		}
		o.CustomValidators[path] = fn
		return nil
	}
}
