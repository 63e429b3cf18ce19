package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotFound           = "NOT_FOUND"
	TextCodeValidation         = "VALIDATION_FAILED"
	TextCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	TextCodeOrderInconsistency = "ORDER_INCONSISTENT"
	TextCodeImportPartial      = "IMPORT_PARTIAL"
	TextCodeForbidden          = "FORBIDDEN"
)

// NotFoundError reports a missing record in a locale partition.
type NotFoundError struct {
	Resource string
	Key      string
	Locale   string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("%s not found", e.Resource)
	case e.Locale == "":
		return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
	default:
		return fmt.Sprintf("%s %q not found in locale %q", e.Resource, e.Key, e.Locale)
	}
}

// NotFound builds a categorized not-found error.
func NotFound(resource, key, locale string) error {
	return categorized(&NotFoundError{Resource: resource, Key: key, Locale: locale},
		goerrors.CategoryNotFound, resource+" not found").
		WithTextCode(TextCodeNotFound).
		WithMetadata(map[string]any{"resource": resource, "key": key, "locale": locale})
}

// Validation converts ozzo-validation errors into a categorized validation
// error carrying per-field messages.
func Validation(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, message).WithTextCode(TextCodeValidation)
}

// StoreUnavailableError reports a failed or timed out store call.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// StoreUnavailable wraps a store failure. Not found, validation and
// authorization errors pass through untouched, as do errors already wrapped.
func StoreUnavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidation(err) || IsForbidden(err) || IsStoreUnavailable(err) {
		return err
	}
	msg := "store call failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "store call timed out"
	}
	return categorized(&StoreUnavailableError{Op: op, Err: err}, goerrors.CategoryExternal, msg).
		WithTextCode(TextCodeStoreUnavailable).
		WithMetadata(map[string]any{"operation": op})
}

// OrderInconsistencyError reports an ordering result that is not a
// permutation of the partition ids. It signals a bug, never user input.
type OrderInconsistencyError struct {
	Kind     Kind
	Locale   string
	Expected int
	Got      int
	Detail   string
}

func (e *OrderInconsistencyError) Error() string {
	return fmt.Sprintf("order inconsistency in %s/%s: expected %d ids, got %d (%s)",
		e.Kind, e.Locale, e.Expected, e.Got, e.Detail)
}

// OrderInconsistency builds a categorized internal error.
func OrderInconsistency(detail *OrderInconsistencyError) error {
	return categorized(detail, goerrors.CategoryInternal, "order inconsistency").
		WithTextCode(TextCodeOrderInconsistency)
}

// RecordFailure identifies a legacy record that could not be imported.
type RecordFailure struct {
	LegacyID string
	Title    string
	Err      error
}

// ImportPartialFailure collects per-record import failures. It is logged,
// never returned to readers.
type ImportPartialFailure struct {
	Kind     Kind
	Locale   string
	Failures []RecordFailure
}

func (e *ImportPartialFailure) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%q): %v", failure.LegacyID, failure.Title, failure.Err))
	}
	return fmt.Sprintf("import %s/%s: %d record(s) failed: %s",
		e.Kind, e.Locale, len(e.Failures), strings.Join(parts, "; "))
}

// Forbidden reports a mutation attempted without the admin role.
func Forbidden(action string) error {
	return goerrors.New("admin role required to "+action, goerrors.CategoryAuthz).
		WithTextCode(TextCodeForbidden)
}

// categorized attaches source to a fresh go-errors value. goerrors.Wrap would
// clone any *goerrors.Error found in the source chain instead.
func categorized(source error, category goerrors.Category, message string) *goerrors.Error {
	err := goerrors.New(message, category)
	err.Source = source
	return err
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target) || goerrors.IsNotFound(err)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return goerrors.IsValidation(err)
}

// IsStoreUnavailable reports whether err wraps a store failure.
func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryAuthz)
}

// IsOrderInconsistency reports whether err is an ordering invariant violation.
func IsOrderInconsistency(err error) bool {
	var target *OrderInconsistencyError
	return errors.As(err, &target)
}
