package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Config and compilation
// errors are caller bugs and are never retried; execution errors may be
// retried by the caller with backoff, the engine performs no hidden retries.
var (
	// ErrIndexNotFound is returned when a named index is not registered
	ErrIndexNotFound = errors.New("index not found")

	// ErrConfig is the class of structural/configuration errors
	ErrConfig = errors.New("configuration error")

	// ErrCompilation is the class of filter compilation errors
	ErrCompilation = errors.New("compilation error")

	// ErrExecution is the class of store execution errors
	ErrExecution = errors.New("execution error")

	// ErrAggregation is the class of facet aggregation errors
	ErrAggregation = errors.New("aggregation error")
)

// IndexNotFoundError represents an index not found error with context.
type IndexNotFoundError struct {
	IndexName string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index named '%s' not found", e.IndexName)
}

func (e *IndexNotFoundError) Is(target error) bool {
	return target == ErrIndexNotFound
}

// NewIndexNotFoundError creates a new IndexNotFoundError.
func NewIndexNotFoundError(indexName string) *IndexNotFoundError {
	return &IndexNotFoundError{IndexName: indexName}
}

// ConfigError represents a structural problem in a query: an unknown or
// incapable field, an operator/type mismatch, an invalid range, or invalid
// pagination. It is always surfaced before any store call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// CompilationError represents a filter that cannot be compiled: a malformed
// regex, an inconsistent nested group, or a filter tree exceeding the depth
// bound. Surfaced before execution.
type CompilationError struct {
	Reason string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation error: %s", e.Reason)
}

func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}

// NewCompilationError creates a new CompilationError.
func NewCompilationError(reason string) *CompilationError {
	return &CompilationError{Reason: reason}
}

// ExecutionError represents a store-side failure: unreachable backend,
// deadline exceeded, or partial failure. Partial reports whether partial
// results were available when the failure occurred.
type ExecutionError struct {
	IndexName string
	Reason    string
	Partial   bool
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.IndexName != "" {
		return fmt.Sprintf("execution error on index '%s': %s", e.IndexName, e.Reason)
	}
	return fmt.Sprintf("execution error: %s", e.Reason)
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a new ExecutionError wrapping the store failure.
func NewExecutionError(indexName, reason string, partial bool, err error) *ExecutionError {
	return &ExecutionError{IndexName: indexName, Reason: reason, Partial: partial, Err: err}
}

// AggregationError represents a facet problem, e.g. a facet requested on a
// non-facetable field. It degrades gracefully: the facet is omitted and the
// overall search still succeeds.
type AggregationError struct {
	Field  string
	Reason string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation error for field '%s': %s", e.Field, e.Reason)
}

func (e *AggregationError) Is(target error) bool {
	return target == ErrAggregation
}

// NewAggregationError creates a new AggregationError.
func NewAggregationError(field, reason string) *AggregationError {
	return &AggregationError{Field: field, Reason: reason}
}
