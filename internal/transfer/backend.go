package transfer

// Backend selects how entries reach their destination.
type Backend string

const (
	// BackendAuto uses the built-in SSH client for host-qualified remotes
	// and a filesystem copy for everything else.
	BackendAuto Backend = "auto"
	// BackendLocal copies through the local filesystem only.
	BackendLocal Backend = "local"
	// BackendSCP shells out to scp(1).
	BackendSCP Backend = "scp"
	// BackendSSH uses the built-in SSH client.
	BackendSSH Backend = "ssh"
)

// IsValid returns true if the backend is recognized
func (b Backend) IsValid() bool {
	switch b {
	case BackendAuto, BackendLocal, BackendSCP, BackendSSH:
		return true
	default:
		return false
	}
}

// AllBackends returns every selectable backend
func AllBackends() []Backend {
	return []Backend{BackendAuto, BackendLocal, BackendSCP, BackendSSH}
}
