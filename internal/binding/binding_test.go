package binding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/remote/remotetest"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// recordingFactory hands out a fresh fake per build and records the
// capability each build was given.
type recordingFactory struct {
	caps    []*model.Capability
	handles []*remotetest.Fake
	err     error
}

func (f *recordingFactory) build(cap *model.Capability) (remote.Client, error) {
	f.caps = append(f.caps, cap)
	if f.err != nil {
		return nil, f.err
	}
	h := remotetest.New()
	f.handles = append(f.handles, h)
	return h, nil
}

func TestBinding_StartsWithAnonymousHandle(t *testing.T) {
	t.Parallel()
	f := &recordingFactory{}
	sess := session.NewManager(remotetest.NewProvider("alice"))

	b, err := New(f.build, sess, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	require.True(t, b.Ready())
	require.Len(t, f.caps, 1)
	require.Nil(t, f.caps[0])
}

func TestBinding_RebuildsOncePerCapabilityChange(t *testing.T) {
	t.Parallel()
	f := &recordingFactory{}
	sess := session.NewManager(remotetest.NewProvider("alice"))
	ctx := context.Background()

	b, err := New(f.build, sess, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	gen := b.Generation()

	_, err = sess.Login(ctx)
	require.NoError(t, err)

	require.Len(t, f.caps, 2)
	require.NotNil(t, f.caps[1])
	require.Equal(t, "alice", f.caps[1].Principal)
	require.Equal(t, gen+1, b.Generation())

	// the anonymous handle must not survive the identity change
	require.True(t, f.handles[0].Closed)
	require.False(t, f.handles[1].Closed)

	sess.Clear(ctx)
	require.Len(t, f.caps, 3)
	require.Nil(t, f.caps[2])
	require.True(t, f.handles[1].Closed)
	require.Equal(t, gen+2, b.Generation())
}

func TestBinding_FactoryFailureLeavesNotReady(t *testing.T) {
	t.Parallel()
	f := &recordingFactory{}
	sess := session.NewManager(remotetest.NewProvider("alice"))
	ctx := context.Background()

	b, err := New(f.build, sess, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	f.err = errors.New("no transport")
	_, err = sess.Login(ctx)
	require.NoError(t, err)

	// the stale anonymous handle is gone, not held over
	require.False(t, b.Ready())
	_, ok := b.Client()
	require.False(t, ok)
	require.True(t, f.handles[0].Closed)

	// recovery on the next capability change
	f.err = nil
	sess.Clear(ctx)
	require.True(t, b.Ready())
}

func TestBinding_NewFailsWhenInitialBuildFails(t *testing.T) {
	t.Parallel()
	f := &recordingFactory{err: errors.New("no transport")}
	sess := session.NewManager(remotetest.NewProvider("alice"))

	_, err := New(f.build, sess, zap.NewNop())
	require.Error(t, err)
}

func TestBinding_CloseReleasesHandle(t *testing.T) {
	t.Parallel()
	f := &recordingFactory{}
	sess := session.NewManager(remotetest.NewProvider("alice"))

	b, err := New(f.build, sess, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.True(t, f.handles[0].Closed)
	require.False(t, b.Ready())
	require.NoError(t, b.Close()) // idempotent
}
