package transfer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
)

// SSHOptions configures the built-in SSH backend.
type SSHOptions struct {
	// ConfigPath is the OpenSSH client configuration used to resolve host
	// aliases. Empty disables alias resolution.
	ConfigPath string
	// KnownHostsPath locates the host key database.
	KnownHostsPath string
	// InsecureIgnoreHostKey skips host key verification entirely.
	InsecureIgnoreHostKey bool
	// Password is tried after key and agent authentication.
	Password string
	// DialTimeout bounds connection establishment. Zero means 10 seconds.
	DialTimeout time.Duration
}

// SSH transfers entries over the built-in SSH client. Connections are pooled
// per user@host:port and validated with a keepalive before reuse, so a
// profile with many entries on one host pays for a single handshake.
type SSH struct {
	opts SSHOptions

	mu      sync.Mutex
	clients map[string]*ssh.Client

	resolverOnce sync.Once
	resolver     *hostResolver
}

// NewSSH returns the built-in SSH backend.
func NewSSH(opts SSHOptions) *SSH {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	return &SSH{opts: opts, clients: make(map[string]*ssh.Client)}
}

// Transfer copies e.Local to the remote host file by file. Files whose
// remote size and modification time already match are skipped.
func (s *SSH) Transfer(ctx context.Context, e registry.Entry) Outcome {
	r := ParseRemote(e.Remote)
	if !r.IsRemote() {
		return Failed(fmt.Sprintf("ssh backend needs a host-qualified remote, got %q", e.Remote))
	}
	if err := ctx.Err(); err != nil {
		return FailedErr(err)
	}

	client, err := s.client(s.resolve(r))
	if err != nil {
		return FailedErr(err)
	}

	srcInfo, err := os.Stat(e.Local)
	if err != nil {
		return FailedErr(err)
	}

	var copied int
	var size int64
	if srcInfo.IsDir() {
		copied, size, err = s.pushDir(ctx, client, e.Local, r.Path)
	} else {
		copied, size, err = s.pushFile(client, e.Local, srcInfo, r.Path)
	}
	if err != nil {
		return FailedErr(err)
	}
	if copied == 0 {
		return Unchanged()
	}

	logging.Debug("pushed over ssh",
		logging.Local(e.Local),
		logging.Remote(e.Remote),
		logging.Count(copied),
	)
	return Transferred(size)
}

// Close shuts down every pooled connection.
func (s *SSH) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, client := range s.clients {
		if err := client.Close(); err != nil {
			logging.Warn("failed to close ssh client", logging.Remote(key), logging.Err(err))
		}
		delete(s.clients, key)
	}
}

func (s *SSH) resolve(r Remote) target {
	s.resolverOnce.Do(func() {
		s.resolver = newHostResolver(s.opts.ConfigPath)
	})
	return s.resolver.resolve(r)
}

// client returns an established connection for the target, reusing pooled
// connections when possible.
func (s *SSH) client(t target) (*ssh.Client, error) {
	key := t.user + "@" + t.host + ":" + t.port

	s.mu.Lock()
	if client, found := s.clients[key]; found {
		// Keepalive detects stale connections without a full reconnect attempt.
		_, _, err := client.SendRequest("keepalive@openssh.com", true, nil)
		if err == nil {
			s.mu.Unlock()
			return client, nil
		}
		if err := client.Close(); err != nil {
			logging.Warn("failed to close stale ssh client", logging.Remote(key), logging.Err(err))
		}
		delete(s.clients, key)
	}
	s.mu.Unlock() // Unlock before the potentially long dial

	authMethods, err := s.authMethods(t)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare auth for %s: %w", key, err)
	}
	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no authentication method available for %s (key, agent, or password required)", key)
	}

	cfg := &ssh.ClientConfig{
		User:            t.user,
		Auth:            authMethods,
		HostKeyCallback: s.hostKeyCallback(),
		Timeout:         s.opts.DialTimeout,
	}

	newClient, err := ssh.Dial("tcp", net.JoinHostPort(t.host, t.port), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", key, err)
	}

	s.mu.Lock()
	// Another goroutine may have connected while we were dialing.
	if existing, found := s.clients[key]; found {
		s.mu.Unlock()
		_ = newClient.Close()
		return existing, nil
	}
	s.clients[key] = newClient
	s.mu.Unlock()

	return newClient, nil
}

// authMethods prepares authentication in the order ssh(1) would try it:
// identity file, agent, password.
func (s *SSH) authMethods(t target) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if t.identityFile != "" {
		// #nosec G304 - the identity file comes from the user's ssh config
		key, err := os.ReadFile(t.identityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read identity file %s: %w", t.identityFile, err)
		}

		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			if _, ok := err.(*ssh.PassphraseMissingError); ok {
				logging.Warn("identity file is passphrase-protected, relying on agent",
					logging.Path(t.identityFile))
			} else {
				return nil, fmt.Errorf("failed to parse identity file %s: %w", t.identityFile, err)
			}
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if s.opts.Password != "" {
		methods = append(methods, ssh.Password(s.opts.Password))
	}

	return methods, nil
}

// hostKeyCallback verifies host keys against known_hosts. A missing or
// unparsable file degrades to no verification with a warning.
func (s *SSH) hostKeyCallback() ssh.HostKeyCallback {
	if s.opts.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey() // #nosec G106 - explicit opt-in
	}

	callback, err := knownhosts.New(s.opts.KnownHostsPath)
	if err != nil {
		logging.Warn("known_hosts unavailable, host keys will not be verified",
			logging.Path(s.opts.KnownHostsPath),
			logging.Err(err),
		)
		return ssh.InsecureIgnoreHostKey() // #nosec G106 - degraded fallback, warned above
	}
	return callback
}

// run executes one command in a fresh session and returns its stdout.
func (s *SSH) run(client *ssh.Client, cmd string) (string, error) {
	sess, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open session: %w", err)
	}
	defer func() { _ = sess.Close() }()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr
	if err := sess.Run(cmd); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// remoteUpToDate compares size and mtime on the remote side. Any stat
// failure counts as out of date.
func (s *SSH) remoteUpToDate(client *ssh.Client, info os.FileInfo, remotePath string) bool {
	out, err := s.run(client, "stat -c '%s %Y' -- "+shellQuote(remotePath))
	if err != nil {
		return false
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return false
	}
	size, err1 := strconv.ParseInt(fields[0], 10, 64)
	mtime, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil {
		return false
	}
	return size == info.Size() && mtime >= info.ModTime().Unix()
}

// pushFile streams one file to the remote path unless it is already up to
// date, then mirrors its permissions and mtime so the next run can skip it.
func (s *SSH) pushFile(client *ssh.Client, local string, info os.FileInfo, remotePath string) (int, int64, error) {
	if s.remoteUpToDate(client, info, remotePath) {
		return 0, 0, nil
	}

	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if _, err := s.run(client, "mkdir -p -- "+shellQuote(dir)); err != nil {
			return 0, 0, fmt.Errorf("failed to create remote directory %q: %w", dir, err)
		}
	}

	// #nosec G304 - local comes from the user's own registry
	f, err := os.Open(local)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open %q: %w", local, err)
	}
	defer func() { _ = f.Close() }()

	sess, err := client.NewSession()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open session: %w", err)
	}
	defer func() { _ = sess.Close() }()

	var stderr bytes.Buffer
	sess.Stdin = f
	sess.Stderr = &stderr
	if err := sess.Run("cat > " + shellQuote(remotePath)); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, 0, fmt.Errorf("remote write to %q failed: %s", remotePath, msg)
		}
		return 0, 0, fmt.Errorf("remote write to %q failed: %w", remotePath, err)
	}

	meta := fmt.Sprintf("chmod %o -- %s && touch -m -d @%d -- %s",
		info.Mode().Perm(), shellQuote(remotePath),
		info.ModTime().Unix(), shellQuote(remotePath))
	if _, err := s.run(client, meta); err != nil {
		return 0, 0, fmt.Errorf("failed to set remote metadata on %q: %w", remotePath, err)
	}

	return 1, info.Size(), nil
}

// pushDir walks the local directory and pushes every regular file, creating
// remote directories as it descends. Symlinks and special files are skipped.
func (s *SSH) pushDir(ctx context.Context, client *ssh.Client, localDir, remoteDir string) (int, int64, error) {
	var copied int
	var total int64

	err := filepath.WalkDir(localDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		remote := path.Join(remoteDir, filepath.ToSlash(rel))

		if d.IsDir() {
			_, err := s.run(client, "mkdir -p -- "+shellQuote(remote))
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		c, b, err := s.pushFile(client, p, info, remote)
		copied += c
		total += b
		return err
	})

	return copied, total, err
}
