// Package cli provides command definitions for rusync.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
	"github.com/Theomat/rusync/internal/ui"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Create a new empty sync profile",
		UsageText: `rusync new <name>
   rusync new website`,
		Description: `Create a profile under the given name and save the registry.

   The name must not collide with an existing profile. Entries are added
   afterwards with 'rusync add'.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("new requires exactly 1 argument: <name>")
			}
			return runNew(cmd, args.Get(0))
		},
	}
}

func runNew(cmd *cli.Command, name string) error {
	logging.Debug("creating profile", logging.Profile(name))

	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	if err := reg.Create(name); err != nil {
		return err
	}
	if err := store.Save(reg); err != nil {
		return err
	}

	fmt.Printf("successfully created: %s\n", name)
	return nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a local/remote entry to a profile",
		UsageText: `rusync add <name> <local> <remote>
   rusync add website ./public web:/srv/www
   rusync add notes ~/notes /mnt/backup/notes`,
		Description: `Append a (local, remote) pair to the named profile.

   The local path is stored absolute. The remote side is an scp-style
   descriptor, "host:path", or a plain path for destinations on this
   machine. Profile names may be abbreviated to an unambiguous prefix.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 3 {
				return errors.New("add requires exactly 3 arguments: <name> <local> <remote>")
			}
			return runAdd(cmd, args.Get(0), args.Get(1), args.Get(2))
		},
	}
}

func runAdd(cmd *cli.Command, name, local, remote string) error {
	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	p, err := reg.Find(name)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(local)
	if err != nil {
		return fmt.Errorf("cannot resolve %q: %w", local, err)
	}

	if err := reg.AddEntry(p.Name, abs, remote); err != nil {
		return err
	}
	if err := store.Save(reg); err != nil {
		return err
	}

	logging.Debug("entry added",
		logging.Profile(p.Name),
		logging.Local(abs),
		logging.Remote(remote),
	)
	fmt.Printf("added to %s: %s -> %s\n", p.Name, abs, remote)
	return nil
}

func lsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List the profiles in scope for a folder",
		UsageText: `rusync ls [options] [folder]
   rusync ls
   rusync ls ~/projects/site
   rusync ls --long
   rusync ls --all`,
		Description: `Print the name of every profile having at least one entry under the
   folder (default: the working directory), one per line, in registry
   order. The bare output is stable and safe to consume from scripts.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "long",
				Aliases: []string{"l"},
				Usage:   "Also list each profile's entries under the folder",
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "List every profile regardless of scope",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() > 1 {
				return errors.New("ls takes at most 1 argument: [folder]")
			}
			return runLs(cmd, args.Get(0))
		},
	}
}

func runLs(cmd *cli.Command, folder string) error {
	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	dir, err := resolveDir(folder)
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		if len(reg.Profiles) == 0 {
			fmt.Fprintln(os.Stderr, "no profiles")
			return nil
		}
		printProfiles(reg.Profiles, cmd.Bool("long"), "")
		return nil
	}

	profiles := registry.InScope(reg, dir)
	if len(profiles) == 0 {
		fmt.Fprintf(os.Stderr, "found no sync in %s\n", dir)
		return nil
	}
	printProfiles(profiles, cmd.Bool("long"), dir)
	return nil
}

// printProfiles lists profiles one per line. In long form each profile gets
// its entries indented below it, limited to those under dir when dir is
// given.
func printProfiles(profiles []registry.Profile, long bool, dir string) {
	for _, p := range profiles {
		if !long {
			fmt.Println(p.Name)
			continue
		}

		entries := p.Entries
		if dir != "" {
			entries = registry.EntriesUnder(p, dir)
		}
		fmt.Printf("%s (%s)\n", ui.ProfileName(p.Name), entryCount(len(entries)))
		for _, e := range entries {
			fmt.Printf("  %s -> %s\n", ui.LocalPath(e.Local), ui.RemoteDesc(e.Remote))
		}
	}
}

// resolveDir absolutizes the folder argument, defaulting to the working
// directory.
func resolveDir(folder string) (string, error) {
	if folder == "" {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		return dir, nil
	}
	return filepath.Abs(folder)
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show a profile's entries",
		UsageText: `rusync show <name>
   rusync show website`,
		Description: `Print the profile's name and every (local, remote) entry it holds.
   Profile names may be abbreviated to an unambiguous prefix.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("show requires exactly 1 argument: <name>")
			}
			return runShow(cmd, args.Get(0))
		},
	}
}

func runShow(cmd *cli.Command, name string) error {
	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	p, err := reg.Find(name)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", ui.ProfileName(p.Name), entryCount(len(p.Entries)))
	for _, e := range p.Entries {
		fmt.Printf("  %s -> %s\n", ui.LocalPath(e.Local), ui.RemoteDesc(e.Remote))
	}
	return nil
}

func delCommand() *cli.Command {
	return &cli.Command{
		Name:  "del",
		Usage: "Delete a profile",
		UsageText: `rusync del [options] <name>
   rusync del website
   rusync del website --force`,
		Description: `Remove the profile from the registry. The files its entries synced are
   never touched. Profile names may be abbreviated to an unambiguous
   prefix.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("del requires exactly 1 argument: <name>")
			}
			return runDel(cmd, args.Get(0))
		},
	}
}

func runDel(cmd *cli.Command, name string) error {
	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	p, err := reg.Find(name)
	if err != nil {
		return err
	}

	if !cmd.Bool("force") {
		question := fmt.Sprintf("delete profile %q with %s?", p.Name, entryCount(len(p.Entries)))
		if !confirm(question) {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := reg.Delete(p.Name); err != nil {
		return err
	}
	if err := store.Save(reg); err != nil {
		return err
	}

	logging.Info("profile deleted", logging.Profile(p.Name))
	fmt.Printf("deleted: %s\n", p.Name)
	return nil
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:  "rm",
		Usage: "Remove entries from a profile",
		UsageText: `rusync rm <name> <path>...
   rusync rm website ./public
   rusync rm website web:/srv/www`,
		Description: `Drop every entry of the profile whose local path or remote descriptor
   matches one of the given arguments. Local paths may be given relative;
   they are compared in the absolute form they were stored in. The profile
   itself stays, even when its last entry goes.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 2 {
				return errors.New("rm requires at least 2 arguments: <name> <path>...")
			}
			return runRm(cmd, args.Get(0), args.Slice()[1:])
		},
	}
}

func runRm(cmd *cli.Command, name string, paths []string) error {
	store, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	reg, err := store.Load()
	if err != nil {
		return err
	}

	p, err := reg.Find(name)
	if err != nil {
		return err
	}

	// Entries hold absolute local paths, so match each argument both as
	// given and absolutized.
	match := make([]string, 0, len(paths)*2)
	for _, s := range paths {
		match = append(match, s)
		if abs, err := filepath.Abs(s); err == nil && abs != s {
			match = append(match, abs)
		}
	}

	removed, err := reg.RemoveEntries(p.Name, match)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintf(os.Stderr, "no matching entries in %s\n", p.Name)
		return nil
	}

	if err := store.Save(reg); err != nil {
		return err
	}

	for _, e := range removed {
		fmt.Printf("removed from %s: %s -> %s\n", p.Name, e.Local, e.Remote)
	}
	return nil
}

// confirm asks a yes/no question on stdin, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// entryCount renders an entry total with its unit.
func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
