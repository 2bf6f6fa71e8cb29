package transfer

import (
	"context"

	"github.com/Theomat/rusync/internal/registry"
)

// New builds the transferrer for a backend choice. Unrecognized values fall
// back to automatic dispatch.
func New(backend Backend, opts SSHOptions) Transferrer {
	switch backend {
	case BackendLocal:
		return NewLocal()
	case BackendSCP:
		return NewSCP()
	case BackendSSH:
		return NewSSH(opts)
	default:
		return &auto{local: NewLocal(), remote: NewSSH(opts)}
	}
}

// auto dispatches per entry: host-qualified descriptors go over SSH,
// everything else is a filesystem copy.
type auto struct {
	local  Transferrer
	remote Transferrer
}

func (a *auto) Transfer(ctx context.Context, e registry.Entry) Outcome {
	if ParseRemote(e.Remote).IsRemote() {
		return a.remote.Transfer(ctx, e)
	}
	return a.local.Transfer(ctx, e)
}

// Close releases pooled connections when the wrapped backends hold any.
func (a *auto) Close() {
	if c, ok := a.remote.(*SSH); ok {
		c.Close()
	}
}
