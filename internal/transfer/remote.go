package transfer

import "strings"

// Remote is a parsed remote descriptor.
type Remote struct {
	// User is the login name from a "user@host:path" descriptor, empty when
	// the descriptor leaves it to the SSH configuration
	User string
	// Host is empty for destinations on this machine
	Host string
	// Path is the destination path
	Path string
}

// IsRemote reports whether the descriptor addresses another host.
func (r Remote) IsRemote() bool {
	return r.Host != ""
}

// ParseRemote splits an scp-style descriptor. "host:path" and
// "user@host:path" address a host; anything else is a plain path on this
// machine. Like scp, a separator before the first colon makes the whole
// descriptor a local path, so "./odd:name" keeps working.
func ParseRemote(desc string) Remote {
	i := strings.Index(desc, ":")
	if i <= 0 {
		return Remote{Path: desc}
	}
	if j := strings.IndexByte(desc, '/'); j >= 0 && j < i {
		return Remote{Path: desc}
	}

	hostPart := desc[:i]
	path := desc[i+1:]
	if at := strings.LastIndex(hostPart, "@"); at >= 0 {
		return Remote{User: hostPart[:at], Host: hostPart[at+1:], Path: path}
	}
	return Remote{Host: hostPart, Path: path}
}
