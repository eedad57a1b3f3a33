// Package docxedit provides custom error types for better error handling and reporting.
package docxedit

import (
	"fmt"
	"strings"
)

// StructuralError reports a structural mismatch in the markup or a misuse of
// the entity model: a merge across incompatible runs, a field separate/end
// marker with no open begin, or a bookmark erasure range that would truncate
// another bookmark. It is always fatal to the current transformation;
// continuing would produce corrupt, non-reconstructible output.
type StructuralError struct {
	Operation string
	Message   string
	Fragment  string
}

func (e *StructuralError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("structural error during %s: %s (near %q)", e.Operation, e.Message, truncateFragment(e.Fragment))
	}
	return fmt.Sprintf("structural error during %s: %s", e.Operation, e.Message)
}

// NewStructuralError creates a structural error carrying the offending
// fragment or identifier for diagnosis.
func NewStructuralError(operation, message, fragment string) error {
	return &StructuralError{
		Operation: operation,
		Message:   message,
		Fragment:  fragment,
	}
}

func truncateFragment(fragment string) string {
	const max = 60
	if len(fragment) <= max {
		return fragment
	}
	return fragment[:max] + "..."
}

// ConfigError reports an unrecognized option name or value. It is raised
// before any markup mutation occurs.
type ConfigError struct {
	Option  string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("configuration error: option %q value %q: %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("configuration error: option %q: %s", e.Option, e.Message)
}

// NewConfigError creates a new configuration error.
func NewConfigError(option, value, message string) error {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// DocumentError represents an error during document package operations.
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error.
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// MultiError collects multiple errors.
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector.
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors).
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors.
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty.
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error.
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context.
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// IsStructuralError checks if an error is a structural error.
func IsStructuralError(err error) bool {
	_, ok := err.(*StructuralError)
	return ok
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}

// IsDocumentError checks if an error is a document error.
func IsDocumentError(err error) bool {
	_, ok := err.(*DocumentError)
	return ok
}
