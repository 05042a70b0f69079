// Package apperr defines the failure kinds every core operation reports.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	NotFound
	Forbidden
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error carries the kind of failure plus the offending field and the rule it broke.
type Error struct {
	Kind    Kind
	Field   string
	Rule    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Rule
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(field, rule, msg string) *Error {
	return &Error{Kind: Validation, Field: field, Rule: rule, Message: msg}
}

func Conflicting(field, rule, msg string) *Error {
	return &Error{Kind: Conflict, Field: field, Rule: rule, Message: msg}
}

func Missing(field, msg string) *Error {
	return &Error{Kind: NotFound, Field: field, Rule: "not_found", Message: msg}
}

func Denied(msg string) *Error {
	return &Error{Kind: Forbidden, Rule: "forbidden", Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: Unauthenticated, Rule: "unauthenticated", Message: msg}
}

// Wrap marks err as an internal store or infrastructure failure.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// KindOf reports the kind of err, Internal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// RuleOf returns the rule identifier of err, empty for foreign errors.
func RuleOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Rule
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
