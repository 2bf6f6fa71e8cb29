// Package transfer moves the local side of a sync entry to its remote
// destination. It provides a capability interface, Transferrer, and three
// implementations: a filesystem copy, an scp(1) shell-out, and a built-in
// SSH client with connection pooling.
package transfer

import (
	"context"

	"github.com/Theomat/rusync/internal/registry"
)

// Status classifies what happened to a single entry.
type Status string

const (
	// StatusTransferred means content was copied to the destination.
	StatusTransferred Status = "transferred"
	// StatusUnchanged means the destination was already up to date.
	StatusUnchanged Status = "unchanged"
	// StatusFailed means the entry could not be synced.
	StatusFailed Status = "failed"
)

// Outcome is the result of transferring one entry. A failure is data, not an
// error value: it never aborts the entries that come after it.
type Outcome struct {
	Status Status
	// Reason describes the failure; empty otherwise
	Reason string
	// Bytes is the copied payload size when known
	Bytes int64
}

// Transferred returns a successful outcome for copied content.
func Transferred(bytes int64) Outcome {
	return Outcome{Status: StatusTransferred, Bytes: bytes}
}

// Unchanged returns the outcome for an already up-to-date destination.
func Unchanged() Outcome {
	return Outcome{Status: StatusUnchanged}
}

// Failed returns a failed outcome with the given reason.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason}
}

// FailedErr returns a failed outcome carrying the error's message.
func FailedErr(err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: err.Error()}
}

// Transferrer moves one entry's local side to its remote destination. The
// outcome reports transferred, unchanged, or failed with a reason;
// implementations never return partial states.
type Transferrer interface {
	Transfer(ctx context.Context, e registry.Entry) Outcome
}
