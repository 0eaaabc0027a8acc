package ir

import (
	"errors"
	"fmt"
)

// Error categories. Operations wrap them in *Error; match with errors.Is.
var (
	// ErrInvalidArgumentKind reports an input of a kind the operation does not
	// accept, such as erasing a package or asking whether an executable is a subtype.
	ErrInvalidArgumentKind = errors.New("invalid argument kind")

	// ErrStructuralMismatch reports inputs that are individually valid but do not
	// fit together: wrong number of type arguments, a bound violation, or a member
	// that does not belong to the containing type.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrUnsupportedOperation reports a request the type algebra does not implement.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Error describes a failed type operation.
type Error struct {
	Op     string // operation name, e.g. "erase"
	Kind   error  // one of the Err* categories
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf returns an *Error for op and kind with a formatted detail message.
func Errorf(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
