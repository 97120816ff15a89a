package lowered

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors reported by the Linear IR and by the passes.
type ErrorKind int

//go:generate go tool enumer -type=ErrorKind -output=gen_errorkind_enumer.go errors.go

const (
	// PassFailure is a generic, pass-specific precondition violation.
	PassFailure ErrorKind = iota

	// Topology is reported when a Parameter or Result doesn't have exactly one neighbor.
	Topology

	// InvalidQuery is reported when a connection lookup has no answer, e.g. asking for the consumers of
	// a Result's output.
	InvalidQuery
)

// Error is the error type returned by the Linear IR and the passes.
//
// It is always returned wrapped with a stack trace, use errors.As (or KindOf and ExprOf) to inspect it.
type Error struct {
	Kind ErrorKind

	// Expr is the expression that caused the error, or NoExpr if not identifiable.
	Expr ExprID

	msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Expr == NoExpr {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return fmt.Sprintf("%s: expression %s: %s", e.Kind, e.Expr, e.msg)
}

// Errorf creates a new *Error of the given kind, with a stack trace attached.
func Errorf(kind ErrorKind, expr ExprID, format string, args ...any) error {
	return errors.WithStack(&Error{
		Kind: kind,
		Expr: expr,
		msg:  fmt.Sprintf(format, args...),
	})
}

// KindOf returns the ErrorKind of err. Errors not created by this package are PassFailure.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return PassFailure
}

// ExprOf returns the expression associated with err, or NoExpr.
func ExprOf(err error) ExprID {
	var e *Error
	if errors.As(err, &e) {
		return e.Expr
	}
	return NoExpr
}

// IsKind returns whether err (or any error it wraps) is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
