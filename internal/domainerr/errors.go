// Package domainerr classifies domain failures so transport layers can map
// them without knowing every sentinel a package declares.
package domainerr

import "errors"

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation_error"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is a classified domain error. Code is a stable snake_case identifier.
type Error struct {
	Kind Kind
	Code string
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
)

func NotFound(code string) *Error     { return &Error{Kind: KindNotFound, Code: code} }
func Validation(code string) *Error   { return &Error{Kind: KindValidation, Code: code} }
func Conflict(code string) *Error     { return &Error{Kind: KindConflict, Code: code} }
func Unauthorized(code string) *Error { return &Error{Kind: KindUnauthorized, Code: code} }
func Forbidden(code string) *Error    { return &Error{Kind: KindForbidden, Code: code} }

func (e *Error) Error() string {
	if e.Code == "" {
		return string(e.Kind)
	}
	return e.Code
}

// Is matches the kind-level sentinels against any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, string, bool) {
	var de *Error
	if !errors.As(err, &de) {
		return "", "", false
	}
	return de.Kind, de.Error(), true
}
