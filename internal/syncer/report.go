package syncer

import (
	"fmt"
	"strings"

	"github.com/Theomat/rusync/internal/registry"
	"github.com/Theomat/rusync/internal/transfer"
)

// EntryResult represents the outcome of syncing a single entry.
type EntryResult struct {
	// Profile is the name of the profile the entry belongs to.
	Profile string

	// Entry is the entry that was processed.
	Entry registry.Entry

	// Outcome reports what happened to it.
	Outcome transfer.Outcome
}

// Report contains the complete outcome of a sync run.
type Report struct {
	// Results holds one result per entry, in registry order.
	Results []EntryResult

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Transferred returns entries whose content was copied.
func (r *Report) Transferred() []EntryResult {
	return r.filterByStatus(transfer.StatusTransferred)
}

// Unchanged returns entries whose destination was already current.
func (r *Report) Unchanged() []EntryResult {
	return r.filterByStatus(transfer.StatusUnchanged)
}

// Failed returns entries that could not be synced.
func (r *Report) Failed() []EntryResult {
	return r.filterByStatus(transfer.StatusFailed)
}

// filterByStatus returns results with the given status.
func (r *Report) filterByStatus(status transfer.Status) []EntryResult {
	var filtered []EntryResult
	for _, res := range r.Results {
		if res.Outcome.Status == status {
			filtered = append(filtered, res)
		}
	}
	return filtered
}

// OK returns true if no entry failed.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// TotalProcessed returns the total number of entries processed.
func (r *Report) TotalProcessed() int {
	return len(r.Results)
}

// Summary returns a human-readable summary of the sync run.
func (r *Report) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Synced %d entries\n", r.TotalProcessed()))
	sb.WriteString(fmt.Sprintf("  Transferred: %d\n", len(r.Transferred())))
	sb.WriteString(fmt.Sprintf("  Unchanged:   %d\n", len(r.Unchanged())))
	sb.WriteString(fmt.Sprintf("  Failed:      %d\n", len(r.Failed())))

	if !r.OK() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %s -> %s: %s\n",
				f.Profile, f.Entry.Local, f.Entry.Remote, f.Outcome.Reason))
		}
	}

	return sb.String()
}
