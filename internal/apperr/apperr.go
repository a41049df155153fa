package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags an Error so callers can switch on it instead of comparing messages.
type Kind string

const (
	KindValidation                   Kind = "validation"
	KindConflictingCategorySelection Kind = "conflictingCategorySelection"
	KindCategoryDoesntExist          Kind = "categoryDoesntExist"
	KindDuplicateCategoryName        Kind = "duplicateCategoryName"
	KindStoreExpected                Kind = "storeExpected"
	KindStore                        Kind = "store"
	KindUnauthorized                 Kind = "unauthorized"
)

// businessCodes are the messages the store raises for rule violations.
var businessCodes = map[string]Kind{
	string(KindConflictingCategorySelection): KindConflictingCategorySelection,
	string(KindCategoryDoesntExist):          KindCategoryDoesntExist,
	string(KindDuplicateCategoryName):        KindDuplicateCategoryName,
}

// FieldError is the first violated rule of one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind      Kind
	Message   string
	Fields    []FieldError
	Procedure string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Procedure != "" {
		b.WriteString(" (")
		b.WriteString(e.Procedure)
		b.WriteString(")")
	}
	if e.Message != "" && e.Message != string(e.Kind) {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, ErrX) works
// for the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrConflictingCategorySelection = &Error{Kind: KindConflictingCategorySelection, Message: string(KindConflictingCategorySelection)}
	ErrCategoryDoesntExist          = &Error{Kind: KindCategoryDoesntExist, Message: string(KindCategoryDoesntExist)}
	ErrDuplicateCategoryName        = &Error{Kind: KindDuplicateCategoryName, Message: string(KindDuplicateCategoryName)}
)

func ConflictingCategorySelection() *Error {
	return &Error{Kind: KindConflictingCategorySelection, Message: string(KindConflictingCategorySelection)}
}

func Validation(fields []FieldError) *Error {
	msg := string(KindValidation)
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: string(KindUnauthorized), Err: err}
}

// Business builds the error for a store-raised business code. ok is false when
// code is not one of the known rule violations.
func Business(code, procedure string, cause error) (*Error, bool) {
	kind, ok := businessCodes[code]
	if !ok {
		return nil, false
	}
	return &Error{Kind: kind, Message: code, Procedure: procedure, Err: cause}, true
}

func New(kind Kind, message, procedure string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Procedure: procedure, Err: cause}
}

// Store wraps an unexpected persistence failure.
func Store(procedure string, cause error) *Error {
	return &Error{Kind: KindStore, Message: fmt.Sprintf("procedure %s failed", procedure), Procedure: procedure, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindStore for
// anything untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// MessageOf returns the client-facing message carried by err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return string(KindOf(err))
}

// FieldsOf returns the per-field violations of a validation error.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
