// Package scopedfs narrows a general-purpose file-open primitive down to
// "open <name>.txt inside one pre-validated directory, explicit mode
// required". The file lock backend only ever sees the narrowed function, so
// a bug in it cannot reach outside the lock directory.
package scopedfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pkt.systems/claimd/internal/identifier"
)

// Mode selects the open disposition. The zero value is deliberately
// invalid: callers must state read or write intent on every open.
type Mode int

const (
	modeUnset Mode = iota
	// ModeRead opens an existing record read-only.
	ModeRead
	// ModeWrite truncate-creates the record for writing.
	ModeWrite
)

// ErrModeRequired is returned when an open omits an explicit mode.
var ErrModeRequired = errors.New("scopedfs: open mode required")

// Unscoped is the shape of the broad primitive handed to Narrow, typically
// os.OpenFile. It must not be retained anywhere else once narrowed.
type Unscoped func(path string, flag int, perm os.FileMode) (*os.File, error)

// OpenFunc is the narrowed capability handed to the file backend.
type OpenFunc func(name string, mode Mode) (*os.File, error)

// Narrow builds the scoped open function over dir. The directory is
// validated and created up front; the unscoped primitive survives only
// inside the returned closure, so callers should drop their own reference
// after this call.
func Narrow(open Unscoped, dir string) (OpenFunc, error) {
	if open == nil {
		return nil, errors.New("scopedfs: unscoped open primitive required")
	}
	dir = filepath.Clean(dir)
	if dir == "" || dir == "." {
		return nil, errors.New("scopedfs: lock directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scopedfs: prepare lock directory %q: %w", dir, err)
	}
	return func(name string, mode Mode) (*os.File, error) {
		if err := identifier.Require(name); err != nil {
			return nil, fmt.Errorf("scopedfs: %w", err)
		}
		var flag int
		switch mode {
		case ModeRead:
			flag = os.O_RDONLY
		case ModeWrite:
			flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		default:
			return nil, ErrModeRequired
		}
		return open(filepath.Join(dir, name+".txt"), flag, 0o644)
	}, nil
}
