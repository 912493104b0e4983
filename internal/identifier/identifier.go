// Package identifier restricts player and instance names to the character
// set that is safe to embed in filesystem paths and URL path segments.
package identifier

import (
	"errors"
	"fmt"
)

// Valid reports whether every byte of s is in [0-9A-Za-z_-]. The empty
// string passes the predicate; callers reject emptiness where a name is
// actually required.
func Valid(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// UnsafeError reports an identifier that falls outside the allowed set.
type UnsafeError struct {
	Value string
}

func (e *UnsafeError) Error() string {
	return fmt.Sprintf("identifier %q contains characters outside [0-9A-Za-z_-]", e.Value)
}

// Require returns an *UnsafeError unless s is a non-empty safe identifier.
func Require(s string) error {
	if s == "" || !Valid(s) {
		return &UnsafeError{Value: s}
	}
	return nil
}

// IsUnsafe reports whether err is an identifier-safety rejection.
func IsUnsafe(err error) bool {
	var ue *UnsafeError
	return errors.As(err, &ue)
}
