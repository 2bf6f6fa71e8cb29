package registry

import (
	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/pathmatch"
)

// InScope returns the profiles having at least one entry whose local path
// lies under dir, in registry order. The scan of a profile stops at its
// first matching entry, so entry count beyond the first match never changes
// the answer. Profiles without entries are never in scope. The registry is
// only read; calling InScope twice with the same arguments returns the same
// profiles.
func InScope(reg *Registry, dir string) []Profile {
	var out []Profile
	for _, p := range reg.Profiles {
		for _, e := range p.Entries {
			if pathmatch.IsUnder(e.Local, dir) {
				out = append(out, p)
				break
			}
		}
	}

	logging.Debug("resolved scope",
		logging.Operation("resolve_scope"),
		logging.Dir(dir),
		logging.Count(len(out)),
	)
	return out
}

// EntriesUnder returns the entries of p whose local paths lie under dir, in
// entry order.
func EntriesUnder(p Profile, dir string) []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if pathmatch.IsUnder(e.Local, dir) {
			out = append(out, e)
		}
	}
	return out
}
