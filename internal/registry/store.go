package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Theomat/rusync/internal/logging"
)

const (
	// storeDirPerm is the permission for the registry's parent directory (rwxr-x---)
	storeDirPerm = 0o750
	// storeFilePerm is the permission for the registry file (rw-r--r--)
	storeFilePerm = 0o644
	// backupFilePerm is the permission for registry backups (rw-------)
	backupFilePerm = 0o600
)

// Store reads and writes a registry file.
type Store struct {
	path    string
	backups int
}

// NewStore returns a store bound to path, keeping up to backups previous
// registry versions next to the file. Zero or negative disables backups.
func NewStore(path string, backups int) *Store {
	return &Store{path: path, backups: backups}
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry. A missing file is an empty registry, not an
// error: the tool must work before its first save. Content that cannot be
// decoded is a CorruptError; the store never guesses at a partial parse.
func (s *Store) Load() (*Registry, error) {
	// #nosec G304 - the registry path comes from config, owned by the user
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("registry file absent, starting empty", logging.Path(s.path))
			return &Registry{}, nil
		}
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	var reg Registry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	seen := make(map[string]bool, len(reg.Profiles))
	for _, p := range reg.Profiles {
		if p.Name == "" {
			return nil, &CorruptError{Path: s.path, Err: fmt.Errorf("profile with empty name")}
		}
		if seen[p.Name] {
			return nil, &CorruptError{Path: s.path, Err: fmt.Errorf("duplicate profile %q", p.Name)}
		}
		seen[p.Name] = true
	}

	logging.Debug("registry loaded",
		logging.Path(s.path),
		logging.Count(len(reg.Profiles)),
	)
	return &reg, nil
}

// Save atomically replaces the registry file. The document is written to a
// sibling temp file and renamed over the target, so a crash or full disk
// never leaves a half-written registry behind; a failed save keeps the
// previous file intact.
func (s *Store) Save(reg *Registry) error {
	data, err := toml.Marshal(reg)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirPerm); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	if s.backups > 0 {
		if err := s.backupCurrent(); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: err}
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Chmod(storeFilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	logging.Debug("registry saved",
		logging.Path(s.path),
		logging.Count(len(reg.Profiles)),
	)
	return nil
}

// backupCurrent copies the current registry file aside before it is
// replaced, then prunes backups beyond the configured count. The backup name
// carries a timestamp and a short content hash so repeated saves within a
// second never collide.
func (s *Store) backupCurrent() error {
	// #nosec G304 - the registry path comes from config, owned by the user
	current, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	hash := sha256.Sum256(current)
	// Fixed-width nanoseconds keep lexical order chronological for pruning.
	stamp := time.Now().Format("20060102-150405.000000000")
	bak := fmt.Sprintf("%s.bak.%s-%s", s.path, stamp, hex.EncodeToString(hash[:])[:8])

	if err := os.WriteFile(bak, current, backupFilePerm); err != nil {
		return err
	}
	return s.pruneBackups()
}

// pruneBackups removes the oldest backups once more than the configured
// count exist. The timestamp prefix makes lexical order chronological.
func (s *Store) pruneBackups() error {
	matches, err := filepath.Glob(s.path + ".bak.*")
	if err != nil {
		return err
	}
	if len(matches) <= s.backups {
		return nil
	}

	sort.Strings(matches)
	for _, old := range matches[:len(matches)-s.backups] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}

// Backups lists the registry's backup files, oldest first.
func (s *Store) Backups() ([]string, error) {
	matches, err := filepath.Glob(s.path + ".bak.*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
