package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Theomat/rusync/internal/config"
	"github.com/Theomat/rusync/internal/progress"
	"github.com/Theomat/rusync/internal/registry"
	"github.com/Theomat/rusync/internal/syncer"
	"github.com/Theomat/rusync/internal/transfer"
	"github.com/Theomat/rusync/internal/ui"
	"github.com/Theomat/rusync/internal/ui/tui"
)

// runProfilePicker launches the interactive picker. Tests swap it out.
var runProfilePicker = tui.RunProfilePicker

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync profile entries to their remote destinations",
		UsageText: `rusync sync [options] [name...]
   rusync sync                  # every profile in scope for the working directory
   rusync sync website notes    # explicit profiles, prefix selection applies
   rusync sync --dry-run
   rusync sync --jobs 4
   rusync sync --backend scp
   rusync sync --pick`,
		Description: `Push the local side of every entry of the selected profiles to its
   remote destination. Without names the profiles in scope for the
   working directory run, exactly like the bare invocation. A failing
   entry is reported and the run continues; the command exits non-zero
   when any entry failed.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Report what would transfer without touching destinations",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Sync up to `N` entries concurrently",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Transfer `BACKEND` for this run (" + backendNames() + ")",
			},
			&cli.BoolFlag{
				Name:    "pick",
				Aliases: []string{"p"},
				Usage:   "Choose profiles interactively",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd, cmd.Args().Slice())
		},
	}
}

// runScoped is the bare invocation: sync whatever is in scope for the
// working directory.
func runScoped(ctx context.Context, cmd *cli.Command) error {
	return runSync(ctx, cmd, nil)
}

func runSync(ctx context.Context, cmd *cli.Command, names []string) error {
	store, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	profiles, err := selectProfiles(cmd, reg, names)
	if err != nil {
		return err
	}
	if profiles == nil {
		// Nothing to sync; the notice is already out.
		return nil
	}

	opts := syncer.Options{
		DryRun: cfg.Transfer.DryRun || cmd.Bool("dry-run"),
		Jobs:   cfg.Transfer.Jobs,
	}
	if cmd.IsSet("jobs") {
		opts.Jobs = int(cmd.Int("jobs"))
	}
	if cmd.IsSet("backend") {
		b := transfer.Backend(cmd.String("backend"))
		if !b.IsValid() {
			return fmt.Errorf("unknown backend %q, valid backends: %s", cmd.String("backend"), backendNames())
		}
		cfg.Transfer.Backend = string(b)
	}

	tr := transfer.New(cfg.GetBackend(), cfg.SSHOptions())
	defer closeTransferrer(tr)

	total := 0
	for _, p := range profiles {
		total += len(p.Entries)
	}
	bar := progress.New(progress.Options{
		Max:         int64(total),
		Description: "Syncing",
		Mode:        progressMode(cfg),
	})

	runner := syncer.New(tr, opts)
	runner.OnResult = func(syncer.EntryResult) {
		_ = bar.Add(1)
	}

	report := runner.Run(ctx, profiles)
	_ = bar.Clear()

	printReport(report)

	if !report.OK() {
		return fmt.Errorf("%d of %d entries failed", len(report.Failed()), report.TotalProcessed())
	}
	return nil
}

// selectProfiles decides what to sync: picked interactively, named on the
// command line with prefix selection, or resolved from the working
// directory. A nil slice with a nil error means nothing to do; the notice
// has been printed.
func selectProfiles(cmd *cli.Command, reg *registry.Registry, names []string) ([]registry.Profile, error) {
	if cmd.Bool("pick") {
		return pickProfiles(reg)
	}

	if len(names) > 0 {
		profiles := make([]registry.Profile, 0, len(names))
		for _, name := range names {
			p, err := reg.Find(name)
			if err != nil {
				return nil, err
			}
			profiles = append(profiles, *p)
		}
		return profiles, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	profiles := registry.InScope(reg, dir)
	if len(profiles) == 0 {
		fmt.Fprintf(os.Stderr, "found no sync in %s\n", dir)
		return nil, nil
	}
	return profiles, nil
}

// pickProfiles lets the user choose from every profile, preselecting the
// ones in scope for the working directory.
func pickProfiles(reg *registry.Registry) ([]registry.Profile, error) {
	if len(reg.Profiles) == 0 {
		fmt.Fprintln(os.Stderr, "no profiles")
		return nil, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	var preselect []string
	for _, p := range registry.InScope(reg, dir) {
		preselect = append(preselect, p.Name)
	}

	result, err := runProfilePicker(reg.Profiles, preselect)
	if err != nil {
		return nil, fmt.Errorf("profile picker failed: %w", err)
	}
	if result.Action != tui.ProfilePickerActionSelect || len(result.Selected) == 0 {
		fmt.Fprintln(os.Stderr, "no profiles selected")
		return nil, nil
	}

	profiles := make([]registry.Profile, 0, len(result.Selected))
	for _, name := range result.Selected {
		if p, ok := reg.Profile(name); ok {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// backendNames renders the selectable backends for flag help and errors.
func backendNames() string {
	all := transfer.AllBackends()
	names := make([]string, len(all))
	for i, b := range all {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// progressMode maps the configured progress preference onto the bar mode.
func progressMode(cfg *config.Config) progress.Mode {
	switch cfg.Output.Progress {
	case "always":
		return progress.ModeAlways
	case "never":
		return progress.ModeNever
	default:
		return progress.ModeAuto
	}
}

// closeTransferrer releases pooled connections for backends that hold any.
func closeTransferrer(t transfer.Transferrer) {
	if c, ok := t.(interface{ Close() }); ok {
		c.Close()
	}
}

// printReport writes per-entry outcome lines and the run summary to stdout.
func printReport(report *syncer.Report) {
	for _, res := range report.Results {
		fmt.Println(resultLine(res))
	}
	if len(report.Results) > 0 {
		fmt.Println()
	}
	fmt.Print(report.Summary())
}

// resultLine renders one entry outcome behind its status symbol.
func resultLine(res syncer.EntryResult) string {
	line := fmt.Sprintf("%s: %s -> %s",
		ui.ProfileName(res.Profile),
		ui.LocalPath(res.Entry.Local),
		ui.RemoteDesc(res.Entry.Remote),
	)

	switch res.Outcome.Status {
	case transfer.StatusTransferred:
		if res.Outcome.Bytes > 0 {
			line = fmt.Sprintf("%s (%s)", line, formatSize(res.Outcome.Bytes))
		}
		return ui.StatusSuccess(line)
	case transfer.StatusUnchanged:
		return ui.StatusUnchanged(line)
	default:
		return ui.StatusError(fmt.Sprintf("%s: %s", line, res.Outcome.Reason))
	}
}

// formatSize renders a byte count in human-readable form.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
