// Package registry stores named sync profiles and decides which of them are
// in scope for a working directory.
//
// A profile is a named, ordered list of (local, remote) entries. The whole
// registry persists as a single TOML document whose profile and entry order
// is exactly the order they were created in; loading it back yields the same
// registry byte for byte.
package registry

import (
	"fmt"
	"strings"
)

// Entry pairs a local path with the remote destination it syncs to.
type Entry struct {
	// Local is an absolute path on this machine
	Local string `toml:"local"`
	// Remote is an scp-style descriptor: "host:path", or a plain path for
	// destinations on the local machine
	Remote string `toml:"remote"`
}

// Profile is a named, ordered list of sync entries.
type Profile struct {
	Name    string  `toml:"name"`
	Entries []Entry `toml:"entry,omitempty"`
}

// Registry holds every profile in creation order.
type Registry struct {
	Profiles []Profile `toml:"profile,omitempty"`
}

// Create appends a new empty profile. Creating a name that already exists
// returns a DuplicateError and leaves the registry unchanged.
func (r *Registry) Create(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if _, ok := r.Profile(name); ok {
		return &DuplicateError{Name: name}
	}
	r.Profiles = append(r.Profiles, Profile{Name: name})
	return nil
}

// Profile returns the profile with the exact name.
func (r *Registry) Profile(name string) (*Profile, bool) {
	for i := range r.Profiles {
		if r.Profiles[i].Name == name {
			return &r.Profiles[i], true
		}
	}
	return nil, false
}

// Find selects a profile by name. An exact match always wins; otherwise a
// single profile whose name starts with the given fragment is selected. A
// fragment matching nothing returns an UnknownError, one matching several
// profiles an AmbiguousError.
func (r *Registry) Find(name string) (*Profile, error) {
	if p, ok := r.Profile(name); ok {
		return p, nil
	}

	var matches []int
	for i := range r.Profiles {
		if strings.HasPrefix(r.Profiles[i].Name, name) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &UnknownError{Name: name, Suggestion: ClosestName(name, r.Names())}
	case 1:
		return &r.Profiles[matches[0]], nil
	default:
		names := make([]string, len(matches))
		for i, idx := range matches {
			names[i] = r.Profiles[idx].Name
		}
		return nil, &AmbiguousError{Prefix: name, Matches: names}
	}
}

// AddEntry appends a (local, remote) pair to the named profile. The name
// must be exact; callers resolving user input go through Find first.
// Identical pairs may be added twice, each occurrence syncs independently.
func (r *Registry) AddEntry(name, local, remote string) error {
	p, ok := r.Profile(name)
	if !ok {
		return &UnknownError{Name: name, Suggestion: ClosestName(name, r.Names())}
	}
	p.Entries = append(p.Entries, Entry{Local: local, Remote: remote})
	return nil
}

// Delete removes the named profile. The files it synced are never touched.
func (r *Registry) Delete(name string) error {
	for i := range r.Profiles {
		if r.Profiles[i].Name == name {
			r.Profiles = append(r.Profiles[:i], r.Profiles[i+1:]...)
			return nil
		}
	}
	return &UnknownError{Name: name, Suggestion: ClosestName(name, r.Names())}
}

// RemoveEntries drops every entry of the named profile whose local path or
// remote descriptor equals one of the given strings. The removed entries are
// returned in their original order.
func (r *Registry) RemoveEntries(name string, paths []string) ([]Entry, error) {
	p, ok := r.Profile(name)
	if !ok {
		return nil, &UnknownError{Name: name, Suggestion: ClosestName(name, r.Names())}
	}

	drop := make(map[string]bool, len(paths))
	for _, s := range paths {
		drop[s] = true
	}

	var removed []Entry
	kept := p.Entries[:0]
	for _, e := range p.Entries {
		if drop[e.Local] || drop[e.Remote] {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	p.Entries = kept
	return removed, nil
}

// Names returns every profile name in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Profiles))
	for i, p := range r.Profiles {
		names[i] = p.Name
	}
	return names
}

// EntryCount returns the total number of entries across all profiles.
func (r *Registry) EntryCount() int {
	n := 0
	for _, p := range r.Profiles {
		n += len(p.Entries)
	}
	return n
}
