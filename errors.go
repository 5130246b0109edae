// Package schemaforge is a schema compiler and data-transformation toolchain
// for a declarative data-modeling language: classes, slots, types, enums,
// prefixes, inheritance, mixins, rules and constraints.
//
// The root package holds the error taxonomy shared by every subsystem
// (model, resolve, gen, validate, ioformat, schemaops, migrate). All public
// entry points return one of these variants; none are swallowed.
package schemaforge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cross-cutting conditions.
var (
	// ErrCancelled is returned when an operation is stopped by cooperative
	// cancellation (§5 suspension points).
	ErrCancelled = errors.New("schemaforge: operation cancelled")

	// ErrNotFound is returned when a requested generator, version, or file
	// does not exist.
	ErrNotFound = errors.New("schemaforge: not found")
)

// IoError wraps a filesystem read/write failure.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schemaforge: io error at %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("schemaforge: io error: %v", e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIoError returns a new IoError for the given path.
func NewIoError(path string, err error) *IoError {
	return &IoError{Path: path, Err: err}
}

// IsIoError returns true if err is an IoError.
func IsIoError(err error) bool {
	var e *IoError
	return errors.As(err, &e)
}

// ParseError represents a schema or data parse failure with a source
// location.
type ParseError struct {
	Location string
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("schemaforge: parse error at %s: %s", e.Location, e.Msg)
	}
	return fmt.Sprintf("schemaforge: parse error: %s", e.Msg)
}

// NewParseError returns a new ParseError.
func NewParseError(location, msg string) *ParseError {
	return &ParseError{Location: location, Msg: msg}
}

// IsParseError returns true if err is a ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// SchemaValidationError represents an ill-formed schema detected by the
// Resolver or a Generator: a cycle, an empty name, an unknown reference, a
// dangling parent/mixin, or an invalid identifier.
type SchemaValidationError struct {
	Element string
	Msg     string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schemaforge: schema validation error on %q: %s", e.Element, e.Msg)
}

// NewSchemaValidationError returns a new SchemaValidationError.
func NewSchemaValidationError(element, msg string) *SchemaValidationError {
	return &SchemaValidationError{Element: element, Msg: msg}
}

// IsSchemaValidationError returns true if err is a SchemaValidationError.
func IsSchemaValidationError(err error) bool {
	var e *SchemaValidationError
	return errors.As(err, &e)
}

// InheritanceCycleError is a specialization of SchemaValidationError raised
// by the Resolver's cycle detection (§4.1).
type InheritanceCycleError struct {
	Name string
	Path []string
}

func (e *InheritanceCycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("schemaforge: inheritance cycle at %q: %s", e.Name, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("schemaforge: inheritance cycle at %q", e.Name)
}

// NewInheritanceCycleError returns a new InheritanceCycleError.
func NewInheritanceCycleError(name string, path []string) *InheritanceCycleError {
	return &InheritanceCycleError{Name: name, Path: path}
}

// IsInheritanceCycleError returns true if err is an InheritanceCycleError.
func IsInheritanceCycleError(err error) bool {
	var e *InheritanceCycleError
	return errors.As(err, &e)
}

// UnknownPrefixError is raised by CURIE expansion when the prefix does not
// resolve and no default_prefix is configured.
type UnknownPrefixError struct {
	Prefix string
	CURIE  string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("schemaforge: unknown prefix %q in curie %q", e.Prefix, e.CURIE)
}

// NewUnknownPrefixError returns a new UnknownPrefixError.
func NewUnknownPrefixError(prefix, curie string) *UnknownPrefixError {
	return &UnknownPrefixError{Prefix: prefix, CURIE: curie}
}

// IsUnknownPrefixError returns true if err is an UnknownPrefixError.
func IsUnknownPrefixError(err error) bool {
	var e *UnknownPrefixError
	return errors.As(err, &e)
}

// DataValidationError wraps a list of instance-level validation issues for
// a data file at Path. It is never returned by the Validation Engine itself
// (which collects a report), only by callers that choose to turn a report
// into an error. No package in this module constructs one; the Migration
// Engine's Validation step returns a plain formatted error.
type DataValidationError struct {
	Path   string
	Issues []string
}

func (e *DataValidationError) Error() string {
	return fmt.Sprintf("schemaforge: data validation failed for %q: %d issue(s)", e.Path, len(e.Issues))
}

// NewDataValidationError returns a new DataValidationError.
func NewDataValidationError(path string, issues []string) *DataValidationError {
	return &DataValidationError{Path: path, Issues: issues}
}

// IsDataValidationError returns true if err is a DataValidationError.
func IsDataValidationError(err error) bool {
	var e *DataValidationError
	return errors.As(err, &e)
}

// GeneratorError represents a generator-specific failure: an unsupported
// feature or a formatting failure.
type GeneratorError struct {
	Generator string
	Msg       string
	Err       error
}

func (e *GeneratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schemaforge: generator %q: %s: %v", e.Generator, e.Msg, e.Err)
	}
	return fmt.Sprintf("schemaforge: generator %q: %s", e.Generator, e.Msg)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// NewGeneratorError returns a new GeneratorError.
func NewGeneratorError(generator, msg string, err error) *GeneratorError {
	return &GeneratorError{Generator: generator, Msg: msg, Err: err}
}

// IsGeneratorError returns true if err is a GeneratorError.
func IsGeneratorError(err error) bool {
	var e *GeneratorError
	return errors.As(err, &e)
}

// NotImplementedError represents an acknowledged gap in feature coverage.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("schemaforge: not implemented: %s", e.Feature)
}

// NewNotImplementedError returns a new NotImplementedError.
func NewNotImplementedError(feature string) *NotImplementedError {
	return &NotImplementedError{Feature: feature}
}

// IsNotImplementedError returns true if err is a NotImplementedError.
func IsNotImplementedError(err error) bool {
	var e *NotImplementedError
	return errors.As(err, &e)
}

// IsCancelled returns true if err is, or wraps, ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ConfigError represents a malformed option key or value.
type ConfigError struct {
	Key   string
	Value any
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schemaforge: config error on %q (value=%v): %s", e.Key, e.Value, e.Msg)
}

// NewConfigError returns a new ConfigError.
func NewConfigError(key string, value any, msg string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Msg: msg}
}

// IsConfigError returns true if err is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// NotFoundError represents a missing registered generator, unknown schema
// version, or unknown file.
type NotFoundError struct {
	Label string
	Key   string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("schemaforge: %s not found: %q", e.Label, e.Key)
	}
	return fmt.Sprintf("schemaforge: %s not found", e.Label)
}

// Is reports whether target matches NotFoundError, allowing
// errors.Is(err, ErrNotFound) to succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(label, key string) *NotFoundError {
	return &NotFoundError{Label: label, Key: key}
}

// IsNotFoundErr returns true if err is a NotFoundError or ErrNotFound.
func IsNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// GeneratorNotFoundError is a specialization of NotFoundError used by the
// generator Registry (§6 "Selecting an unknown name yields a
// GeneratorNotFound error").
type GeneratorNotFoundError struct {
	*NotFoundError
}

// NewGeneratorNotFoundError returns a new GeneratorNotFoundError for the
// given generator name.
func NewGeneratorNotFoundError(name string) *GeneratorNotFoundError {
	return &GeneratorNotFoundError{NewNotFoundError("generator", name)}
}

// AggregateError collects multiple errors from an operation that does not
// short-circuit (the Validation Engine's non-fail-fast mode, the Migration
// Engine's rollback walk).
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "schemaforge: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("schemaforge: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// NewAggregateError returns a new AggregateError, or nil if errs contains
// no non-nil errors, or the single non-nil error itself if there is
// exactly one.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return &AggregateError{Errors: filtered}
	}
}
