// Package lock defines the ownership lock-provider contract shared by all
// backends: the check/claim interface, the tagged check result, the error
// taxonomy, the single-line record codec, and the backend registry. Hosts
// embedding claimd register additional backends through Register before the
// registry is sealed at provider-open time.
package lock

import (
	"context"
	"errors"

	"pkt.systems/pslog"
)

// Status tags a CheckResult.
type Status int

const (
	// StatusUnclaimed means no ownership record exists for the player.
	StatusUnclaimed Status = iota
	// StatusOwned means a well-formed record names an owning instance.
	StatusOwned
	// StatusTransient means the record was observed in a recoverable
	// in-between state (typically a half-written file) and the check
	// should be retried later.
	StatusTransient
)

// CheckResult is the soft outcome of Check. Hard failures (protocol
// violations, I/O errors other than not-found) travel as errors instead.
type CheckResult struct {
	Status Status
	// Owner is the owning instance name when Status is StatusOwned.
	Owner string
	// Reason describes the condition when Status is StatusTransient.
	Reason string
}

// Unclaimed is the CheckResult for an absent record.
func Unclaimed() CheckResult { return CheckResult{Status: StatusUnclaimed} }

// OwnedBy builds a CheckResult naming the owning instance.
func OwnedBy(owner string) CheckResult {
	return CheckResult{Status: StatusOwned, Owner: owner}
}

// TransientResult builds a retry-later CheckResult with a reason.
func TransientResult(reason string) CheckResult {
	return CheckResult{Status: StatusTransient, Reason: reason}
}

// ErrProtocol marks on-store records that violate the single-line record
// protocol. It indicates the shared store no longer matches the protocol's
// guarantees and is never converted into a soft denial.
var ErrProtocol = errors.New("lock: record protocol violation")

// Provider arbitrates ownership records, one per player identity.
//
// Check must not fail for ordinary "record absent" or "record mid-write"
// conditions; those are StatusUnclaimed and StatusTransient. Put overwrites
// any existing record without appending; callers invoke it only when they
// already believe they hold (or are entitled to claim) ownership.
type Provider interface {
	Check(ctx context.Context, player string) (CheckResult, error)
	Put(ctx context.Context, player, owner string) error
	Close() error
}

// Settings carries everything a backend constructor may need. Backends pick
// the fields they understand and reject configurations missing theirs.
type Settings struct {
	// Instance is the current server instance name (already validated).
	Instance string
	Logger   pslog.Logger

	// Dir is the shared lock directory for the file backend.
	Dir string

	S3 S3Settings
}

// S3Settings configures the S3-compatible backend.
type S3Settings struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Insecure        bool
	ForcePathStyle  bool
}

type transientError struct {
	err error
}

func (t transientError) Error() string { return t.err.Error() }
func (t transientError) Unwrap() error { return t.err }

// NewTransientError marks err as retryable.
func NewTransientError(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsTransient reports whether err was marked as retryable.
func IsTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}
