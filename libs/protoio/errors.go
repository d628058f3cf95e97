package protoio

import "fmt"

// ErrEncoding is returned for malformed or out of range codec input.
type ErrEncoding struct {
	Field  string
	Reason string
	Err    error
}

func (e ErrEncoding) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return fmt.Sprintf("encoding error in %s: %s: %v", e.Field, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("encoding error in %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("encoding error in %s: %s", e.Field, e.Reason)
	}
}

func (e ErrEncoding) Unwrap() error { return e.Err }

// WrongType builds the error for a field decoded with an unexpected wire type.
func WrongType(field string, f Field) error {
	return ErrEncoding{
		Field:  field,
		Reason: fmt.Sprintf("field %d has wire type %d", f.Num, f.Type),
	}
}
