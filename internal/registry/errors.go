package registry

import (
	"fmt"
	"strings"
)

// DuplicateError reports an attempt to create a profile whose exact name is
// already taken.
type DuplicateError struct {
	// Name is the profile name that already exists
	Name string
}

// Error returns the user-facing message.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("profile %q already exists", e.Name)
}

// UnknownError reports an operation on a profile that does not exist.
type UnknownError struct {
	// Name is the name or prefix that matched nothing
	Name string
	// Suggestion is the closest existing name, when one is plausible
	Suggestion string
}

// Error returns the user-facing message, with a did-you-mean hint when a
// close name exists.
func (e *UnknownError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("no profile named %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("no profile named %q", e.Name)
}

// AmbiguousError reports a name prefix that selects more than one profile.
type AmbiguousError struct {
	// Prefix is the name fragment the user gave
	Prefix string
	// Matches are the profile names the prefix selects, in registry order
	Matches []string
}

// Error returns the user-facing message listing every candidate.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("name %q is ambiguous, matches: %s", e.Prefix, strings.Join(e.Matches, ", "))
}

// CorruptError reports a registry file that exists but cannot be decoded.
type CorruptError struct {
	// Path is the registry file location
	Path string
	// Err is the decode failure
	Err error
}

// Error returns the user-facing message.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// PersistenceError reports an I/O failure while loading or saving the
// registry.
type PersistenceError struct {
	// Op is the failed operation, "load" or "save"
	Op string
	// Path is the registry file location
	Path string
	// Err is the underlying failure
	Err error
}

// Error returns the user-facing message.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s registry %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
