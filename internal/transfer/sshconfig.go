package transfer

import (
	"os"
	"os/user"

	"github.com/kevinburke/ssh_config"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/util"
)

// target is a fully resolved SSH destination.
type target struct {
	user         string
	host         string
	port         string
	identityFile string
}

// hostResolver applies the user's OpenSSH client configuration, so host
// aliases behave the same for rusync as they do for ssh(1).
type hostResolver struct {
	cfg *ssh_config.Config
}

// newHostResolver decodes the configuration at path. A missing or
// unreadable file resolves every alias to itself.
func newHostResolver(path string) *hostResolver {
	if path == "" {
		return &hostResolver{}
	}

	// #nosec G304 - the config path comes from rusync's own configuration
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("cannot read ssh config", logging.Path(path), logging.Err(err))
		}
		return &hostResolver{}
	}
	defer func() { _ = f.Close() }()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		logging.Warn("cannot parse ssh config", logging.Path(path), logging.Err(err))
		return &hostResolver{}
	}
	return &hostResolver{cfg: cfg}
}

// resolve fills in the target for a parsed remote. An explicit user@ in the
// descriptor wins over the configuration, the configuration wins over
// defaults.
func (hr *hostResolver) resolve(r Remote) target {
	t := target{user: r.User, host: r.Host, port: "22"}

	if hr.cfg != nil {
		if v, err := hr.cfg.Get(r.Host, "HostName"); err == nil && v != "" {
			t.host = v
		}
		if t.user == "" {
			if v, err := hr.cfg.Get(r.Host, "User"); err == nil && v != "" {
				t.user = v
			}
		}
		if v, err := hr.cfg.Get(r.Host, "Port"); err == nil && v != "" {
			t.port = v
		}
		if v, err := hr.cfg.Get(r.Host, "IdentityFile"); err == nil && v != "" {
			t.identityFile = util.ExpandHome(v)
		}
	}

	if t.user == "" {
		t.user = currentUsername()
	}
	return t
}

// currentUsername is the login name used when neither the descriptor nor
// the SSH configuration names one.
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
