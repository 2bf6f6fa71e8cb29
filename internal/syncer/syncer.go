// Package syncer runs the entries of resolved profiles through a transfer
// backend and aggregates per-entry results. A failed entry never stops the
// run; it is reported and the run moves on to the next one.
package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
	"github.com/Theomat/rusync/internal/transfer"
)

// Options configures a sync run.
type Options struct {
	// DryRun reports what would transfer without invoking the backend.
	DryRun bool

	// Jobs is how many entries sync concurrently. Values below 2 keep the
	// run sequential.
	Jobs int
}

// DefaultOptions returns the default run options.
func DefaultOptions() Options {
	return Options{DryRun: false, Jobs: 1}
}

// Runner executes sync runs against a transfer backend.
type Runner struct {
	transferrer transfer.Transferrer
	opts        Options

	// OnResult, when set, is called as each entry finishes. Calls are
	// serialized.
	OnResult func(EntryResult)

	mu sync.Mutex
}

// New creates a Runner for the given backend.
func New(t transfer.Transferrer, opts Options) *Runner {
	return &Runner{transferrer: t, opts: opts}
}

// job pairs an entry with the profile it came from.
type job struct {
	profile string
	entry   registry.Entry
}

// Run syncs every entry of the given profiles and reports one result per
// entry, in profile order. Cancelling ctx stops new entries from starting;
// entries that never started are reported as failed with the cancellation
// cause.
func (r *Runner) Run(ctx context.Context, profiles []registry.Profile) *Report {
	defer logging.Timer("sync")()

	var jobs []job
	for _, p := range profiles {
		for _, e := range p.Entries {
			jobs = append(jobs, job{profile: p.Name, entry: e})
		}
	}

	logging.Debug("starting sync run",
		logging.Operation("sync"),
		logging.Count(len(jobs)),
		slog.Bool("dry_run", r.opts.DryRun),
		slog.Int("jobs", r.opts.Jobs),
	)

	report := &Report{
		Results: make([]EntryResult, len(jobs)),
		DryRun:  r.opts.DryRun,
	}

	if r.opts.Jobs > 1 {
		r.runParallel(ctx, jobs, report)
	} else {
		r.runSequential(ctx, jobs, report)
	}

	return report
}

func (r *Runner) runSequential(ctx context.Context, jobs []job, report *Report) {
	for i, j := range jobs {
		report.Results[i] = r.runOne(ctx, j)
	}
}

// runParallel fans jobs out over a bounded pool. Results land at their
// job's index, so report order stays independent of completion order.
func (r *Runner) runParallel(ctx context.Context, jobs []job, report *Report) {
	sem := make(chan struct{}, r.opts.Jobs)
	var wg sync.WaitGroup

	for i, j := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			report.Results[i] = r.record(EntryResult{
				Profile: j.profile,
				Entry:   j.entry,
				Outcome: transfer.FailedErr(ctx.Err()),
			})
			continue
		}

		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Results[i] = r.runOne(ctx, j)
		}(i, j)
	}

	wg.Wait()
}

// runOne transfers a single entry, honoring dry runs and cancellation.
func (r *Runner) runOne(ctx context.Context, j job) EntryResult {
	res := EntryResult{Profile: j.profile, Entry: j.entry}

	switch {
	case ctx.Err() != nil:
		res.Outcome = transfer.FailedErr(ctx.Err())
	case r.opts.DryRun:
		res.Outcome = transfer.Transferred(0)
	default:
		res.Outcome = r.transferrer.Transfer(ctx, j.entry)
	}

	return r.record(res)
}

func (r *Runner) record(res EntryResult) EntryResult {
	if res.Outcome.Status == transfer.StatusFailed {
		logging.Warn("entry failed",
			logging.Profile(res.Profile),
			logging.Local(res.Entry.Local),
			logging.Remote(res.Entry.Remote),
			slog.String("reason", res.Outcome.Reason),
		)
	}

	if r.OnResult != nil {
		r.mu.Lock()
		r.OnResult(res)
		r.mu.Unlock()
	}
	return res
}
