// Package binding produces the call-capable remote handle bound to the
// current capability. A handle is rebuilt exactly once per capability
// change; a handle from a prior identity is never reused.
package binding

import (
	"sync"

	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// Factory builds a handle for the given capability; nil means an anonymous
// (guest) handle.
type Factory func(cap *model.Capability) (remote.Client, error)

// Binding owns the current handle.
type Binding struct {
	factory Factory
	log     *zap.Logger

	mu     sync.Mutex
	client remote.Client
	gen    uint64
}

// New builds the initial (anonymous) handle and subscribes to capability
// changes on the session manager.
func New(factory Factory, sess *session.Manager, log *zap.Logger) (*Binding, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Binding{factory: factory, log: log}
	if err := b.rebuild(nil); err != nil {
		return nil, err
	}
	sess.OnChange(func(cap *model.Capability) {
		if err := b.rebuild(cap); err != nil {
			b.log.Warn("rebuild remote handle", zap.Error(err))
		}
	})
	return b, nil
}

// rebuild swaps in a handle for the new identity and closes the stale one.
// On factory failure the binding is left without a handle (not ready)
// rather than holding the prior identity's handle.
func (b *Binding) rebuild(cap *model.Capability) error {
	client, err := b.factory(cap)

	b.mu.Lock()
	old := b.client
	if err != nil {
		b.client = nil
	} else {
		b.client = client
	}
	b.gen++
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return err
}

// Client returns the current handle; ok is false while no handle exists.
func (b *Binding) Client() (remote.Client, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client, b.client != nil
}

// Ready reports whether a handle exists.
func (b *Binding) Ready() bool {
	_, ok := b.Client()
	return ok
}

// Generation increments on every rebuild; consumers compare it to detect
// identity changes.
func (b *Binding) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Close releases the current handle.
func (b *Binding) Close() error {
	b.mu.Lock()
	c := b.client
	b.client = nil
	b.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}
