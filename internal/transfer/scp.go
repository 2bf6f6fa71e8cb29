package transfer

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
)

// SCP shells out to scp(1). The -p flag preserves modification times so the
// other backends' up-to-date checks keep working on files scp has written,
// -r handles directories. scp cannot see the remote side before copying, so
// a successful run always reports transferred.
type SCP struct {
	// Binary overrides the scp executable, used by tests
	Binary string
}

// NewSCP returns the scp shell-out backend.
func NewSCP() *SCP {
	return &SCP{Binary: "scp"}
}

// Transfer runs scp -p -r local remote and turns the exit status into an
// outcome, with scp's stderr as the failure reason.
func (s *SCP) Transfer(ctx context.Context, e registry.Entry) Outcome {
	bin := s.Binary
	if bin == "" {
		bin = "scp"
	}

	// #nosec G204 - both arguments come from the user's own registry
	cmd := exec.CommandContext(ctx, bin, "-p", "-r", e.Local, e.Remote)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("running scp",
		logging.Local(e.Local),
		logging.Remote(e.Remote),
	)

	if err := cmd.Run(); err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		return Failed(reason)
	}

	var size int64
	if info, err := os.Stat(e.Local); err == nil && !info.IsDir() {
		size = info.Size()
	}
	return Transferred(size)
}
