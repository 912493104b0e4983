package lock

import (
	"bytes"
	"fmt"
)

// ParseRecord interprets the raw bytes of an ownership record. A well-formed
// record is exactly the owner name followed by a single newline with nothing
// after it.
//
// Writers emit the owner bytes and the terminating newline as two separate
// calls, so a record observed without its newline is treated as a half-write
// in progress and reported as transient rather than as corruption. Anything
// after the first newline, or an empty owner line, means the on-store
// protocol itself was violated and escalates as an ErrProtocol failure.
func ParseRecord(data []byte) (CheckResult, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return TransientResult("record missing trailing newline; writer may be mid-flight"), nil
	}
	if len(data) > idx+1 {
		return CheckResult{}, fmt.Errorf("%w: spurious extra lines after owner record", ErrProtocol)
	}
	if idx == 0 {
		return CheckResult{}, fmt.Errorf("%w: empty owner line", ErrProtocol)
	}
	return OwnedBy(string(data[:idx])), nil
}
