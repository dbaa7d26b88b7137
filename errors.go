package ogm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDefinitionNotFound is returned when a model, relationship or label set has no definition.
	ErrDefinitionNotFound = errors.New("ogm: definition not found")

	// ErrValidation is returned when a write's input fails schema constraints.
	ErrValidation = errors.New("ogm: validation failed")

	// ErrTransactionFailed is returned when one or more statements in a batch failed.
	ErrTransactionFailed = errors.New("ogm: transaction failed")

	// ErrDeleted is returned when mutating a node or relationship that has been deleted.
	ErrDeleted = errors.New("ogm: entity has been deleted")

	// ErrNoRecords is returned by HydrateFirst when the result holds no rows.
	ErrNoRecords = errors.New("ogm: result contains no records")

	// ErrIncompleteRelationship is returned when a relationship definition lacks a label or direction.
	ErrIncompleteRelationship = errors.New("ogm: incomplete relationship definition")

	// ErrUnknownPropertyType is returned when a property declares a type the mapper does not know.
	ErrUnknownPropertyType = errors.New("ogm: unknown property type")

	// ErrBidirectionalWrite is returned when creating a relationship whose direction is both.
	ErrBidirectionalWrite = errors.New("ogm: relationships with direction both are read-only")

	// ErrUnknownDriver is returned when opening a driver that has not been registered.
	ErrUnknownDriver = errors.New("ogm: unknown driver")

	// ErrConfigNotFound is returned when no config file can be found.
	ErrConfigNotFound = errors.New("ogm: config file not found")
)

// DefinitionNotFoundError describes a missing model or relationship definition.
type DefinitionNotFoundError struct {
	Kind    string   // "model", "relationship" or "labels"
	Name    string   // requested name, or the joined label set
	Defined []string // names that are defined, if known
}

func (e *DefinitionNotFoundError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ogm: couldn't find a %s definition for %q", e.Kind, e.Name)

	if e.Kind != "model" {
		return b.String()
	}

	if len(e.Defined) == 0 {
		b.WriteString(", it looks like no models have been defined")
	} else {
		fmt.Fprintf(&b, ", the models currently defined are [%s]", strings.Join(e.Defined, ", "))
	}

	return b.String()
}

// Is reports whether target is ErrDefinitionNotFound.
func (e *DefinitionNotFoundError) Is(target error) bool {
	return target == ErrDefinitionNotFound
}

// IsDefinitionNotFound returns true if err is a DefinitionNotFoundError.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// Violation is a single failed validation rule.
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError carries every rule an input violated.
type ValidationError struct {
	Details []Violation
	Input   map[string]any
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		msgs[i] = d.Message
	}

	return fmt.Sprintf("ogm: validation failed: %s", strings.Join(msgs, "; "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StatementFailure records one failed statement of a batch.
type StatementFailure struct {
	Statement string
	Params    map[string]any
	Err       error
}

// TransactionError is returned by Batch after the transaction has been rolled back.
type TransactionError struct {
	Failures []StatementFailure
}

func (e *TransactionError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("ogm: transaction failed: %v", e.Failures[0].Err)
	}

	return fmt.Sprintf("ogm: transaction failed: %d statements failed", len(e.Failures))
}

// Is reports whether target is ErrTransactionFailed.
func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// Unwrap returns the underlying statement errors.
func (e *TransactionError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}

	return errs
}

// DriverError annotates a driver failure with the statement that caused it.
type DriverError struct {
	Statement string
	Params    map[string]any
	Err       error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("ogm: %v (statement: %s)", e.Err, e.Statement)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}
